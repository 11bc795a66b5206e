// Command erbatch builds positive pair sets and previews training batches
// for entity-resolution datasets stored as CSV splits.
//
// Usage:
//
//	erbatch pairs --train s3://bucket/train.csv --valid s3://bucket/valid.csv --out s3://bucket/pairs
//	erbatch batches --train data/train.csv --batch-size 16 --epochs 3
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	arg "github.com/alexflint/go-arg"

	"github.com/hupe1980/erbatch"
	"github.com/hupe1980/erbatch/blobstore"
	"github.com/hupe1980/erbatch/config"
	"github.com/hupe1980/erbatch/resource"
	"github.com/hupe1980/erbatch/rowstore"
)

type commonArgs struct {
	Config string `arg:"--config" help:"YAML config file (default ~/.erbatch/config.yaml)"`

	Train string `arg:"--train" help:"train split CSV (local path, s3:// or minio://)"`
	Valid string `arg:"--valid" help:"validation split CSV"`
	Test  string `arg:"--test" help:"test split CSV"`

	ClusterAttr string `arg:"--cluster-attr" help:"ground-truth cluster attribute"`
	SourceAttr  string `arg:"--source-attr" help:"source attribute, enables record linkage"`
	LeftSource  string `arg:"--left-source" help:"source value of the left side"`

	Seed           *int64 `arg:"--seed" help:"base random seed"`
	BatchSize      *int   `arg:"--batch-size" help:"clusters per training batch"`
	EvalBatchSize  *int   `arg:"--eval-batch-size" help:"rows per evaluation batch"`
	MaxClusterSize *int   `arg:"--max-cluster-size" help:"rows a single cluster may add to a batch"`
	NumWorkers     *int   `arg:"--num-workers" help:"prefetch workers, -1 for all CPUs"`
	LeakCheck      *bool  `arg:"--leak-check" help:"check the splits for shared IDs"`

	Endpoint string `arg:"--endpoint" help:"S3-compatible endpoint"`
	Verbose  bool   `arg:"-v,--verbose" help:"log debug output"`
}

type pairsCmd struct {
	Out         string `arg:"--out,required" help:"output location for the pair sets"`
	Format      string `arg:"--format" default:"json" help:"json or bin"`
	Compression string `arg:"--compression" help:"none, lz4 or zstd (bin only)"`
	Stage       string `arg:"--stage" help:"fit, validate, test or empty for all"`
}

type batchesCmd struct {
	Epochs int `arg:"--epochs" default:"1" help:"training epochs to compose"`
}

type args struct {
	commonArgs
	Pairs   *pairsCmd   `arg:"subcommand:pairs" help:"build and export positive pair sets"`
	Batches *batchesCmd `arg:"subcommand:batches" help:"compose batches and report statistics"`
}

func (args) Description() string {
	return "erbatch prepares pair supervision and batches for entity-resolution models.\n"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}
	logger := erbatch.NewTextLogger(level)

	var err error
	switch {
	case a.Pairs != nil:
		err = runPairs(ctx, a.commonArgs, *a.Pairs, logger)
	case a.Batches != nil:
		err = runBatches(ctx, a.commonArgs, *a.Batches, logger, os.Stdout)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "erbatch:", err)
		os.Exit(1)
	}
}

func (c commonArgs) flags() config.Flags {
	f := config.Flags{
		Train:       c.Train,
		Valid:       c.Valid,
		Test:        c.Test,
		ClusterAttr: c.ClusterAttr,
		SourceAttr:  c.SourceAttr,
		LeftSource:  c.LeftSource,
		Endpoint:    c.Endpoint,
	}
	if c.Seed != nil {
		f.Seed = strconv.FormatInt(*c.Seed, 10)
	}
	for _, p := range []struct {
		src *int
		dst *string
	}{
		{c.BatchSize, &f.BatchSize},
		{c.EvalBatchSize, &f.EvalBatchSize},
		{c.MaxClusterSize, &f.MaxClusterSize},
		{c.NumWorkers, &f.NumWorkers},
	} {
		if p.src != nil {
			*p.dst = strconv.Itoa(*p.src)
		}
	}
	if c.LeakCheck != nil {
		f.LeakCheck = strconv.FormatBool(*c.LeakCheck)
	}
	return f
}

// settings resolves the run configuration, with extra flag overrides
// applied on top of the common ones.
func (c commonArgs) settings(extra func(*config.Flags)) (config.Settings, error) {
	f := c.flags()
	if extra != nil {
		extra(&f)
	}
	resolved, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: c.Config, Flags: f})
	if err != nil {
		return config.Settings{}, err
	}
	return resolved.Settings()
}

// loadModule loads the splits described by s and builds the DataModule.
func loadModule(ctx context.Context, s config.Settings, logger *erbatch.Logger, opts ...erbatch.Option) (*erbatch.DataModule, error) {
	train, err := parseLocation(s.Train)
	if err != nil {
		return nil, err
	}

	names := rowstore.SplitNames{Train: train.Key}
	for _, split := range []struct {
		raw string
		dst *string
	}{{s.Valid, &names.Valid}, {s.Test, &names.Test}} {
		if split.raw == "" {
			continue
		}
		l, err := parseLocation(split.raw)
		if err != nil {
			return nil, err
		}
		if !l.sameStore(train) {
			return nil, fmt.Errorf("%s: splits must share the storage of %s", split.raw, s.Train)
		}
		*split.dst = l.Key
	}

	store, err := openStore(ctx, train, s.Endpoint)
	if err != nil {
		return nil, err
	}

	splits, err := rowstore.LoadSplits(ctx, store, names,
		csvOptions(train.Key, s.Attributes.Cluster), resource.NewController(s.Resource))
	if err != nil {
		return nil, err
	}

	opts = append(append(s.Options(), erbatch.WithLogger(logger)), opts...)
	return erbatch.New(splits, s.Attributes, opts...)
}

// outputStore opens the store for an output location and returns the key
// prefix below which results are written.
func outputStore(ctx context.Context, raw, endpoint string) (blobstore.BlobStore, location, error) {
	l, err := parseLocation(raw)
	if err != nil {
		return nil, location{}, err
	}
	bs, err := openStore(ctx, l, endpoint)
	if err != nil {
		return nil, location{}, err
	}
	return bs, l, nil
}
