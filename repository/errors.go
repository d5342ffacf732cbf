package repository

import (
	"errors"

	"github.com/hupe1980/sparsebloom/internal/resource"
)

var (
	// ErrInvalidName is returned for empty filter names.
	ErrInvalidName = errors.New("repository: invalid filter name")

	// ErrIncompatibleManifest is returned for manifests written by a newer
	// format version.
	ErrIncompatibleManifest = errors.New("repository: incompatible manifest version")

	// ErrManifestMismatch is returned when a filter blob does not match its
	// manifest.
	ErrManifestMismatch = errors.New("repository: filter does not match manifest")

	// ErrMemoryLimitExceeded is returned when a load would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)
