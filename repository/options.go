package repository

import (
	"time"

	"github.com/hupe1980/sparsebloom"
	"github.com/hupe1980/sparsebloom/codec"
	"github.com/hupe1980/sparsebloom/internal/resource"
)

type options struct {
	compression   codec.Compression
	logger        *sparsebloom.Logger
	filterOptions []sparsebloom.Option
	resources     resource.Config
	now           func() time.Time
}

// Option configures a Repository.
type Option func(*options)

// WithCompression sets the block compression used by Save.
// Default is codec.CompressionZSTD.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger sets the logger for save and load events.
func WithLogger(l *sparsebloom.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFilterOptions sets options applied to every loaded filter, such as a
// metrics collector.
func WithFilterOptions(opts ...sparsebloom.Option) Option {
	return func(o *options) {
		o.filterOptions = append(o.filterOptions, opts...)
	}
}

// WithMaxConcurrency bounds the number of concurrent loads in LoadAll.
// Default is 4.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.resources.MaxWorkers = int64(n)
	}
}

// WithIOLimit rate-limits blob reads and writes to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resources.IOLimitBytesPerSec = bytesPerSec
	}
}

// WithMemoryLimit caps the bytes buffered by in-flight loads. Loads that
// would exceed it fail with ErrMemoryLimitExceeded.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

func applyOptions(opts []Option) options {
	o := options{
		compression: codec.CompressionZSTD,
		logger:      sparsebloom.NoopLogger(),
		resources:   resource.Config{MaxWorkers: 4},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
