package codec

import "errors"

var (
	// ErrInvariantViolation is returned when decoded parts break the bitmap's
	// structural invariants. It wraps bitmap.ErrInvariantViolation.
	ErrInvariantViolation = errors.New("codec: decoded bitmap violates structural invariants")

	// ErrBadMagic is returned when the input does not start with a known magic.
	ErrBadMagic = errors.New("codec: bad magic")

	// ErrBadVersion is returned for an unsupported format version.
	ErrBadVersion = errors.New("codec: unsupported version")

	// ErrBadKind is returned when a section has an unexpected kind or
	// compression code.
	ErrBadKind = errors.New("codec: unexpected section kind")

	// ErrChecksumMismatch is returned when the payload checksum does not match.
	ErrChecksumMismatch = errors.New("codec: checksum mismatch")

	// ErrTruncated is returned when the input ends early or the header sizes
	// are inconsistent.
	ErrTruncated = errors.New("codec: truncated or inconsistent input")

	// ErrUnknownHasher is returned when a filter names a hasher that cannot be
	// rebuilt.
	ErrUnknownHasher = errors.New("codec: unknown hasher")

	// ErrHasherNotPersistable is returned when encoding a filter whose hasher
	// does not implement sparsebloom.SeededHasher.
	ErrHasherNotPersistable = errors.New("codec: hasher is not persistable")

	// ErrNotMappable is returned by Map for files that cannot be adopted in
	// place, such as compressed payloads.
	ErrNotMappable = errors.New("codec: file cannot be memory-mapped in place")
)
