package s3

import (
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

// DefaultPartSize is the multipart part size. Blobs up to this size are
// written with a single PutObject.
const DefaultPartSize = 8 * 1024 * 1024

type options struct {
	prefix      string
	region      string
	endpoint    string
	pathStyle   bool
	partSize    int64
	concurrency int
	checksum    bool
}

func defaultOptions() options {
	return options{
		partSize:    DefaultPartSize,
		concurrency: manager.DefaultUploadConcurrency,
		checksum:    true,
	}
}

// Option configures a Store.
type Option func(*options)

// WithPrefix prepends prefix to every key, e.g. "filters/".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region from the default AWS configuration.
// Only used by New.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint points the client at an S3-compatible endpoint using
// path-style addressing. Only used by New.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.pathStyle = true
	}
}

// WithPartSize sets the multipart part size. Values below the S3 minimum
// of 5 MiB are raised to it.
func WithPartSize(size int64) Option {
	return func(o *options) {
		o.partSize = max(size, manager.MinUploadPartSize)
	}
}

// WithConcurrency sets the number of parts uploaded in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithChecksum enables or disables CRC32C upload integrity checks.
// Enabled by default.
func WithChecksum(enabled bool) Option {
	return func(o *options) {
		o.checksum = enabled
	}
}
