package erbatch

import (
	"log/slog"

	"github.com/hupe1980/erbatch/loader"
)

const (
	// DefaultSeed is the base random seed.
	DefaultSeed int64 = 42

	// DefaultBatchSize is the number of clusters per training batch.
	DefaultBatchSize = 32

	// DefaultEvalBatchSize is the number of rows per evaluation batch.
	DefaultEvalBatchSize = 64

	// DefaultSourceAttr is the conventional source attribute for linkage.
	DefaultSourceAttr = "__source"

	// DefaultLeftSource is the conventional left source value for linkage.
	DefaultLeftSource = "left"
)

type options struct {
	seed             int64
	batchSize        int
	evalBatchSize    int
	maxClusterSize   int // 0 means batchSize/3
	trainLoader      loader.Options
	evalLoader       loader.Options
	leakCheck        *bool // nil selects the mode default
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a DataModule.
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		seed:             DefaultSeed,
		batchSize:        DefaultBatchSize,
		evalBatchSize:    DefaultEvalBatchSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o options) validate() error {
	if o.batchSize <= 0 {
		return NewConfigurationError("batch size must be positive, got %d", o.batchSize)
	}
	if o.evalBatchSize <= 0 {
		return NewConfigurationError("eval batch size must be positive, got %d", o.evalBatchSize)
	}
	if o.maxClusterSize < 0 {
		return NewConfigurationError("max cluster size in batch must not be negative, got %d", o.maxClusterSize)
	}
	return nil
}

// clusterCap returns the per-batch row cap of a single cluster.
func (o options) clusterCap() int {
	if o.maxClusterSize > 0 {
		return o.maxClusterSize
	}
	return max(1, o.batchSize/3)
}

// WithSeed sets the base random seed. Epoch e trains with seed + e.
//
// Default: 42.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithBatchSize sets the training batch size. In deduplication and linkage
// mode this counts clusters, not rows; in pairwise mode it counts pairs and
// also applies to validation and test batches.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithEvalBatchSize sets the number of rows per validation/test batch.
func WithEvalBatchSize(n int) Option {
	return func(o *options) {
		o.evalBatchSize = n
	}
}

// WithMaxClusterSizeInBatch caps the rows a single cluster may supply to one
// training batch.
//
// Default: batch size / 3 (at least 1).
func WithMaxClusterSizeInBatch(n int) Option {
	return func(o *options) {
		o.maxClusterSize = n
	}
}

// WithLoaderOptions sets the concurrency options of the training and of the
// evaluation loaders. They are handed to the loader layer unchanged.
func WithLoaderOptions(train, eval loader.Options) Option {
	return func(o *options) {
		o.trainLoader = train
		o.evalLoader = eval
	}
}

// WithLeakCheck enables or disables the cross-split ID check at
// construction. Default: enabled for deduplication and linkage, disabled
// for pairwise modules, whose splits share one row store.
func WithLeakCheck(enabled bool) Option {
	return func(o *options) {
		o.leakCheck = &enabled
	}
}

func (o options) leakCheckEnabled(mode Mode) bool {
	if o.leakCheck != nil {
		return *o.leakCheck
	}
	return mode != ModePairwise
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &erbatch.BasicMetricsCollector{}
//	dm, _ := erbatch.NewDeduplication(train, valid, test, "cluster", erbatch.WithMetricsCollector(metrics))
//	// ... set up and train ...
//	stats := metrics.GetStats()
//	fmt.Printf("Train batches: %d, rows: %d\n", stats.TrainBatches, stats.TrainRows)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := erbatch.NewJSONLogger(slog.LevelInfo)
//	dm, _ := erbatch.NewDeduplication(train, valid, test, "cluster", erbatch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}
