package erbatch

import (
	"log/slog"
	"slices"

	"github.com/hupe1980/erbatch/loader"
	"github.com/hupe1980/erbatch/rowstore"
)

// Builder is an immutable fluent builder for clustered (deduplication or
// linkage) DataModules.
type Builder struct {
	splits rowstore.Splits
	attrs  Attributes
	opts   []Option
}

// Deduplication creates a builder for a deduplication DataModule.
//
// Example:
//
//	dm, err := erbatch.Deduplication(train, valid, test, "cluster").
//	    BatchSize(16).
//	    EvalBatchSize(128).
//	    Seed(7).
//	    Build()
func Deduplication(train, valid, test *rowstore.Store, clusterAttr string) Builder {
	return Builder{
		splits: rowstore.Splits{Train: train, Valid: valid, Test: test},
		attrs:  Attributes{Cluster: clusterAttr},
	}
}

// Linkage creates a builder for a record linkage DataModule. Source and
// left source default to DefaultSourceAttr and DefaultLeftSource.
func Linkage(train, valid, test *rowstore.Store, clusterAttr string) Builder {
	return Builder{
		splits: rowstore.Splits{Train: train, Valid: valid, Test: test},
		attrs: Attributes{
			Cluster:    clusterAttr,
			Source:     DefaultSourceAttr,
			LeftSource: DefaultLeftSource,
		},
	}
}

func (b Builder) with(o Option) Builder {
	b.opts = append(slices.Clip(b.opts), o)
	return b
}

// Source sets the source attribute and the value marking the left side.
func (b Builder) Source(attr, leftValue string) Builder {
	b.attrs.Source = attr
	b.attrs.LeftSource = leftValue
	return b
}

// Seed sets the base random seed.
func (b Builder) Seed(seed int64) Builder {
	return b.with(WithSeed(seed))
}

// BatchSize sets the number of clusters per training batch.
func (b Builder) BatchSize(n int) Builder {
	return b.with(WithBatchSize(n))
}

// EvalBatchSize sets the number of rows per evaluation batch.
func (b Builder) EvalBatchSize(n int) Builder {
	return b.with(WithEvalBatchSize(n))
}

// MaxClusterSizeInBatch caps the rows a cluster supplies to one batch.
func (b Builder) MaxClusterSizeInBatch(n int) Builder {
	return b.with(WithMaxClusterSizeInBatch(n))
}

// Loaders sets the training and evaluation loader options.
func (b Builder) Loaders(train, eval loader.Options) Builder {
	return b.with(WithLoaderOptions(train, eval))
}

// LeakCheck enables or disables the cross-split ID check.
func (b Builder) LeakCheck(enabled bool) Builder {
	return b.with(WithLeakCheck(enabled))
}

// Logger sets the structured logger.
func (b Builder) Logger(l *Logger) Builder {
	return b.with(WithLogger(l))
}

// LogLevel sets a text logger with the given level.
func (b Builder) LogLevel(level slog.Level) Builder {
	return b.with(WithLogLevel(level))
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	return b.with(WithMetricsCollector(mc))
}

// Build creates the DataModule.
func (b Builder) Build() (*DataModule, error) {
	return New(b.splits, b.attrs, b.opts...)
}

// MustBuild creates the DataModule, panicking on error.
func (b Builder) MustBuild() *DataModule {
	dm, err := b.Build()
	if err != nil {
		panic(err)
	}
	return dm
}
