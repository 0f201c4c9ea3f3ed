package serialqueue

// Features is a bitset of optional Queue behaviors.
type Features uint32

const (
	// CooperativeContinuations, on by default, enables the continuation
	// bridge: a Future.Then or Future.ThenSync callback registered from a
	// work item on this queue resumes on the same queue. The bridge is
	// captured when the callback is registered (see continuation.go).
	CooperativeContinuations Features = 1 << iota
)

// queueConfig holds resolved construction options for a Queue.
type queueConfig struct {
	pool     Pool
	features Features
	onError  func(error)
	metrics  bool
}

// Option configures a Queue at construction time.
type Option interface {
	apply(*queueConfig) error
}

type optionFunc func(*queueConfig) error

func (f optionFunc) apply(cfg *queueConfig) error { return f(cfg) }

// WithPool selects the worker pool a Queue submits its drain to. If
// omitted, New uses a shared package-default DefaultPool.
func WithPool(pool Pool) Option {
	return optionFunc(func(cfg *queueConfig) error {
		cfg.pool = pool
		return nil
	})
}

// WithFeatures overrides the default feature set (CooperativeContinuations
// on). Pass 0 to disable every optional feature.
func WithFeatures(features Features) Option {
	return optionFunc(func(cfg *queueConfig) error {
		cfg.features = features
		return nil
	})
}

// WithUnhandledErrorHandler registers the callback invoked with each
// exception escaping an async or delayed work item. Equivalent to calling
// Queue.OnUnhandledError immediately after New.
func WithUnhandledErrorHandler(fn func(error)) Option {
	return optionFunc(func(cfg *queueConfig) error {
		cfg.onError = fn
		return nil
	})
}

// WithMetrics enables queue-depth, drain-count, and latency-quantile
// tracking, retrievable via Queue.Metrics.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(cfg *queueConfig) error {
		cfg.metrics = enabled
		return nil
	})
}

// resolveOptions applies opts over the package defaults.
func resolveOptions(opts []Option) (*queueConfig, error) {
	cfg := &queueConfig{
		pool:     defaultPool(),
		features: CooperativeContinuations,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
