package eventqueue

import "math"

// CleanupMode controls whether a Reader opportunistically triggers
// chunk reclamation after crossing a chunk boundary.
type CleanupMode int

const (
	// CleanupNever means readers never trigger Queue.Cleanup themselves;
	// the owner must call it explicitly.
	CleanupNever CleanupMode = iota
	// CleanupOnChunkRead means a Reader that observes a chunk's
	// read-completion counter reach the subscriber count runs cleanup
	// inline, after finishing its own traversal.
	CleanupOnChunkRead
)

const (
	defaultMinChunkSize = 4
	defaultMaxChunkSize = 1 << 20
)

// config is the resolved, immutable result of applying a set of Option
// values, produced once by New and thereafter embedded in a Queue.
type config struct {
	minChunkSize    int
	maxChunkSize    int
	autoCleanup     CleanupMode
	doubleBuffering bool
	shrink          bool
	logger          Logger
	metrics         *Metrics
}

// Option configures a Queue at construction time.
type Option interface {
	apply(*config) error
}

// optionFunc implements Option by wrapping a closure, mirroring the
// closure-backed option pattern used throughout this module's reference
// implementation.
type optionFunc struct {
	fn func(*config) error
}

func (o *optionFunc) apply(cfg *config) error { return o.fn(cfg) }

// WithMinChunkSize sets the capacity of the first chunk, and the floor of
// the growth schedule. n must be positive.
func WithMinChunkSize(n int) Option {
	return &optionFunc{func(cfg *config) error {
		if n <= 0 {
			return &assertion{Invariant: "option.min_chunk_size", Message: "must be positive"}
		}
		cfg.minChunkSize = n
		return nil
	}}
}

// WithMaxChunkSize sets the ceiling of the growth schedule. n must be
// positive and at most math.MaxUint32/4, so the packed (length, epoch)
// state word never overflows.
func WithMaxChunkSize(n int) Option {
	return &optionFunc{func(cfg *config) error {
		if n <= 0 || n > math.MaxUint32/4 {
			return &assertion{Invariant: "option.max_chunk_size", Message: "must be in (0, math.MaxUint32/4]"}
		}
		cfg.maxChunkSize = n
		return nil
	}}
}

// WithAutoCleanup sets the reader-triggered cleanup mode. Default is
// CleanupNever.
func WithAutoCleanup(mode CleanupMode) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.autoCleanup = mode
		return nil
	}}
}

// WithDoubleBuffering enables the single-slot recycled-chunk cache: on
// reclamation the biggest freed chunk is kept aside and reused for the
// next allocation that fits it, instead of being left for garbage
// collection.
func WithDoubleBuffering() Option {
	return &optionFunc{func(cfg *config) error {
		cfg.doubleBuffering = true
		return nil
	}}
}

// WithShrink enables Queue.Resize, which overrides the capacity of the
// next chunk allocation.
func WithShrink() Option {
	return &optionFunc{func(cfg *config) error {
		cfg.shrink = true
		return nil
	}}
}

// WithLogger attaches a structured logger used for construction,
// configuration, and diagnostic events (e.g. a chunk being reclaimed).
// The hot push/read paths never log. Absent a logger, logging is a no-op.
func WithLogger(l Logger) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.logger = l
		return nil
	}}
}

// WithMetrics attaches a set of Prometheus instruments, constructed via
// NewMetrics and registered by the caller via Metrics.MustRegister.
func WithMetrics(m *Metrics) Option {
	return &optionFunc{func(cfg *config) error {
		cfg.metrics = m
		return nil
	}}
}

// resolveOptions applies opts over a freshly defaulted config, mirroring
// the reference's resolveLoopOptions.
func resolveOptions(opts []Option) (*config, error) {
	cfg := &config{
		minChunkSize: defaultMinChunkSize,
		maxChunkSize: defaultMaxChunkSize,
		autoCleanup:  CleanupNever,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.minChunkSize > cfg.maxChunkSize {
		return nil, &assertion{Invariant: "option.chunk_size_range", Message: "min chunk size must not exceed max chunk size"}
	}
	return cfg, nil
}
