package sparsebloom

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when the number of probes is zero.
	ErrInvalidK = errors.New("sparsebloom: k must be positive")

	// ErrInvalidM is returned when the number of bits is zero.
	ErrInvalidM = errors.New("sparsebloom: m must be positive")

	// ErrInvalidProbability is returned by the sizing helpers for a false
	// positive target outside (0, 1).
	ErrInvalidProbability = errors.New("sparsebloom: false positive probability must be in (0, 1)")

	// ErrKMismatch is returned when combining filters with different k.
	ErrKMismatch = errors.New("sparsebloom: probe count mismatch")

	// ErrHasherMismatch is returned when combining filters whose hashers
	// would not produce the same probes.
	ErrHasherMismatch = errors.New("sparsebloom: hasher mismatch")

	// ErrUnknownHasher is returned by HasherByName for an unregistered name.
	ErrUnknownHasher = errors.New("sparsebloom: unknown hasher")
)

// ErrBitmapTooSmall indicates that a supplied bitmap cannot address m bits.
//
// It matches bitmap.ErrCapacityMismatch via errors.Is.
type ErrBitmapTooSmall struct {
	M        uint64
	Capacity uint64
	cause    error
}

func (e *ErrBitmapTooSmall) Error() string {
	return fmt.Sprintf("sparsebloom: bitmap capacity %d is smaller than m=%d", e.Capacity, e.M)
}

func (e *ErrBitmapTooSmall) Unwrap() error { return e.cause }
