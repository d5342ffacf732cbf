package sparsebloom

type options struct {
	hasher           Hasher
	logger           *Logger
	metricsCollector MetricsCollector
	count            uint64
}

// Option configures filter construction.
type Option func(*options)

// WithHasher configures the hasher probes are derived from.
//
// If nil is passed or the option is omitted, NewRandomHasher is used. The
// hasher must not change for the lifetime of the filter.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		o.hasher = h
	}
}

// WithLogger configures the logger. Defaults to NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures the metrics collector.
// Defaults to NoopMetricsCollector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCount seeds the inserted item counter. It is used when a populated
// bitmap is restored so that Count and the estimated false positive rate
// carry over.
func WithCount(n uint64) Option {
	return func(o *options) {
		o.count = n
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasher == nil {
		o.hasher = NewRandomHasher()
	}
	return o
}
