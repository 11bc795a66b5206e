// Package config resolves erbatch run configuration from a YAML file,
// ERBATCH_* environment variables and command line flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/erbatch"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/loader"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/resource"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// Flags carries command line overrides. Empty fields are not applied.
type Flags struct {
	Train, Valid, Test string

	ClusterAttr string
	SourceAttr  string
	LeftSource  string

	Seed           string
	BatchSize      string
	EvalBatchSize  string
	MaxClusterSize string
	NumWorkers     string
	LeakCheck      string

	Endpoint    string
	Compression string
}

type ResolveOptions struct {
	ConfigPath string
	Flags      Flags
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	Train ResolvedValue `json:"train"`
	Valid ResolvedValue `json:"valid"`
	Test  ResolvedValue `json:"test"`

	ClusterAttr ResolvedValue `json:"cluster_attr"`
	SourceAttr  ResolvedValue `json:"source_attr"`
	LeftSource  ResolvedValue `json:"left_source"`

	Seed           ResolvedValue `json:"seed"`
	BatchSize      ResolvedValue `json:"batch_size"`
	EvalBatchSize  ResolvedValue `json:"eval_batch_size"`
	MaxClusterSize ResolvedValue `json:"max_cluster_size_in_batch"`
	NumWorkers     ResolvedValue `json:"num_workers"`
	MPContext      ResolvedValue `json:"multiprocessing_context"`
	LeakCheck      ResolvedValue `json:"leak_check"`

	Endpoint           ResolvedValue `json:"endpoint"`
	MemoryLimitBytes   ResolvedValue `json:"memory_limit_bytes"`
	MaxConcurrentLoads ResolvedValue `json:"max_concurrent_loads"`
	IOLimitBytesPerSec ResolvedValue `json:"io_limit_bytes_per_sec"`
	Compression        ResolvedValue `json:"compression"`
}

type fileConfig struct {
	Splits struct {
		Train string `yaml:"train"`
		Valid string `yaml:"valid"`
		Test  string `yaml:"test"`
	} `yaml:"splits"`
	Attributes struct {
		Cluster    string `yaml:"cluster"`
		Source     string `yaml:"source"`
		LeftSource string `yaml:"left_source"`
	} `yaml:"attributes"`
	Batching struct {
		Seed           string `yaml:"seed"`
		BatchSize      string `yaml:"batch_size"`
		EvalBatchSize  string `yaml:"eval_batch_size"`
		MaxClusterSize string `yaml:"max_cluster_size_in_batch"`
	} `yaml:"batching"`
	Loader struct {
		NumWorkers string `yaml:"num_workers"`
		MPContext  string `yaml:"multiprocessing_context"`
	} `yaml:"loader"`
	LeakCheck string `yaml:"leak_check"`
	Storage   struct {
		Endpoint           string `yaml:"endpoint"`
		MemoryLimitBytes   string `yaml:"memory_limit_bytes"`
		MaxConcurrentLoads string `yaml:"max_concurrent_loads"`
		IOLimitBytesPerSec string `yaml:"io_limit_bytes_per_sec"`
	} `yaml:"storage"`
	Export struct {
		Compression string `yaml:"compression"`
	} `yaml:"export"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".erbatch", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	setDefault(&out.ClusterAttr, "cluster")
	setDefault(&out.Seed, strconv.FormatInt(erbatch.DefaultSeed, 10))
	setDefault(&out.BatchSize, strconv.Itoa(erbatch.DefaultBatchSize))
	setDefault(&out.EvalBatchSize, strconv.Itoa(erbatch.DefaultEvalBatchSize))
	setDefault(&out.MaxClusterSize, "0")
	setDefault(&out.NumWorkers, "0")
	setDefault(&out.LeakCheck, "true")
	setDefault(&out.MaxConcurrentLoads, "3")
	setDefault(&out.Compression, pairs.CompressionZSTD.String())

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.Train, cfg.Splits.Train, SourceConfig, path)
		apply(&out.Valid, cfg.Splits.Valid, SourceConfig, path)
		apply(&out.Test, cfg.Splits.Test, SourceConfig, path)
		apply(&out.ClusterAttr, cfg.Attributes.Cluster, SourceConfig, path)
		apply(&out.SourceAttr, cfg.Attributes.Source, SourceConfig, path)
		apply(&out.LeftSource, cfg.Attributes.LeftSource, SourceConfig, path)
		apply(&out.Seed, cfg.Batching.Seed, SourceConfig, path)
		apply(&out.BatchSize, cfg.Batching.BatchSize, SourceConfig, path)
		apply(&out.EvalBatchSize, cfg.Batching.EvalBatchSize, SourceConfig, path)
		apply(&out.MaxClusterSize, cfg.Batching.MaxClusterSize, SourceConfig, path)
		apply(&out.NumWorkers, cfg.Loader.NumWorkers, SourceConfig, path)
		apply(&out.MPContext, cfg.Loader.MPContext, SourceConfig, path)
		apply(&out.LeakCheck, cfg.LeakCheck, SourceConfig, path)
		apply(&out.Endpoint, cfg.Storage.Endpoint, SourceConfig, path)
		apply(&out.MemoryLimitBytes, cfg.Storage.MemoryLimitBytes, SourceConfig, path)
		apply(&out.MaxConcurrentLoads, cfg.Storage.MaxConcurrentLoads, SourceConfig, path)
		apply(&out.IOLimitBytesPerSec, cfg.Storage.IOLimitBytesPerSec, SourceConfig, path)
		apply(&out.Compression, cfg.Export.Compression, SourceConfig, path)
	}

	applyEnv(&out.Train, "ERBATCH_TRAIN")
	applyEnv(&out.Valid, "ERBATCH_VALID")
	applyEnv(&out.Test, "ERBATCH_TEST")
	applyEnv(&out.ClusterAttr, "ERBATCH_CLUSTER_ATTR")
	applyEnv(&out.SourceAttr, "ERBATCH_SOURCE_ATTR")
	applyEnv(&out.LeftSource, "ERBATCH_LEFT_SOURCE")
	applyEnv(&out.Seed, "ERBATCH_SEED")
	applyEnv(&out.BatchSize, "ERBATCH_BATCH_SIZE")
	applyEnv(&out.EvalBatchSize, "ERBATCH_EVAL_BATCH_SIZE")
	applyEnv(&out.MaxClusterSize, "ERBATCH_MAX_CLUSTER_SIZE_IN_BATCH")
	applyEnv(&out.NumWorkers, "ERBATCH_NUM_WORKERS")
	applyEnv(&out.MPContext, "ERBATCH_MULTIPROCESSING_CONTEXT")
	applyEnv(&out.LeakCheck, "ERBATCH_LEAK_CHECK")
	applyEnv(&out.Endpoint, "ERBATCH_ENDPOINT")
	applyEnv(&out.MemoryLimitBytes, "ERBATCH_MEMORY_LIMIT_BYTES")
	applyEnv(&out.MaxConcurrentLoads, "ERBATCH_MAX_CONCURRENT_LOADS")
	applyEnv(&out.IOLimitBytesPerSec, "ERBATCH_IO_LIMIT_BYTES_PER_SEC")
	applyEnv(&out.Compression, "ERBATCH_COMPRESSION")

	f := opts.Flags
	apply(&out.Train, f.Train, SourceCLI, "--train")
	apply(&out.Valid, f.Valid, SourceCLI, "--valid")
	apply(&out.Test, f.Test, SourceCLI, "--test")
	apply(&out.ClusterAttr, f.ClusterAttr, SourceCLI, "--cluster-attr")
	apply(&out.SourceAttr, f.SourceAttr, SourceCLI, "--source-attr")
	apply(&out.LeftSource, f.LeftSource, SourceCLI, "--left-source")
	apply(&out.Seed, f.Seed, SourceCLI, "--seed")
	apply(&out.BatchSize, f.BatchSize, SourceCLI, "--batch-size")
	apply(&out.EvalBatchSize, f.EvalBatchSize, SourceCLI, "--eval-batch-size")
	apply(&out.MaxClusterSize, f.MaxClusterSize, SourceCLI, "--max-cluster-size")
	apply(&out.NumWorkers, f.NumWorkers, SourceCLI, "--num-workers")
	apply(&out.LeakCheck, f.LeakCheck, SourceCLI, "--leak-check")
	apply(&out.Endpoint, f.Endpoint, SourceCLI, "--endpoint")
	apply(&out.Compression, f.Compression, SourceCLI, "--compression")

	for _, p := range []*ResolvedValue{&out.Train, &out.Valid, &out.Test} {
		if p.Value != "" {
			p.Value = expandUserPath(p.Value)
		}
	}

	return out, nil
}

// Settings is a validated, typed view of a ResolvedConfig.
type Settings struct {
	Train, Valid, Test string

	Attributes erbatch.Attributes

	Seed           int64
	BatchSize      int
	EvalBatchSize  int
	MaxClusterSize int
	Loader         loader.Options
	LeakCheck      bool

	Endpoint    string
	Resource    resource.Config
	Compression pairs.Compression
}

// Settings parses and validates the resolved values. Parse failures name
// the offending value and where it came from.
func (r ResolvedConfig) Settings() (Settings, error) {
	s := Settings{
		Train:    r.Train.Value,
		Valid:    r.Valid.Value,
		Test:     r.Test.Value,
		Endpoint: r.Endpoint.Value,
		Attributes: erbatch.Attributes{
			Cluster:    r.ClusterAttr.Value,
			Source:     r.SourceAttr.Value,
			LeftSource: r.LeftSource.Value,
		},
	}

	var err error
	if s.Seed, err = parseInt64(r.Seed, "seed"); err != nil {
		return s, err
	}
	ints := []struct {
		dst  *int
		v    ResolvedValue
		name string
	}{
		{&s.BatchSize, r.BatchSize, "batch_size"},
		{&s.EvalBatchSize, r.EvalBatchSize, "eval_batch_size"},
		{&s.MaxClusterSize, r.MaxClusterSize, "max_cluster_size_in_batch"},
		{&s.Loader.NumWorkers, r.NumWorkers, "num_workers"},
	}
	for _, in := range ints {
		n, err := parseInt64(in.v, in.name)
		if err != nil {
			return s, err
		}
		*in.dst = int(n)
	}
	if s.Resource.MaxConcurrentLoads, err = parseInt64(r.MaxConcurrentLoads, "max_concurrent_loads"); err != nil {
		return s, err
	}
	if s.Resource.MemoryLimitBytes, err = parseInt64(r.MemoryLimitBytes, "memory_limit_bytes"); err != nil {
		return s, err
	}
	if s.Resource.IOLimitBytesPerSec, err = parseInt64(r.IOLimitBytesPerSec, "io_limit_bytes_per_sec"); err != nil {
		return s, err
	}

	if s.LeakCheck, err = strconv.ParseBool(r.LeakCheck.Value); err != nil {
		return s, invalid("leak_check", r.LeakCheck, err)
	}
	if s.Compression, err = pairs.ParseCompression(r.Compression.Value); err != nil {
		return s, invalid("compression", r.Compression, err)
	}

	s.Loader.MultiprocessingContext = r.MPContext.Value
	s.Loader = s.Loader.Resolve()

	if s.Attributes.Cluster == "" {
		return s, core.NewConfigurationError("cluster_attr is required")
	}
	if (s.Attributes.Source == "") != (s.Attributes.LeftSource == "") {
		return s, core.NewConfigurationError(
			"source_attr and left_source must be set together, got source_attr=%q (%s) left_source=%q (%s)",
			r.SourceAttr.Value, r.SourceAttr.Source, r.LeftSource.Value, r.LeftSource.Source)
	}
	if s.BatchSize <= 0 || s.EvalBatchSize <= 0 {
		return s, core.NewConfigurationError("batch sizes must be positive, got batch_size=%d eval_batch_size=%d",
			s.BatchSize, s.EvalBatchSize)
	}
	if s.Train == "" {
		return s, core.NewConfigurationError("train split location is required")
	}

	return s, nil
}

// Options returns the DataModule options the settings describe.
func (s Settings) Options() []erbatch.Option {
	opts := []erbatch.Option{
		erbatch.WithSeed(s.Seed),
		erbatch.WithBatchSize(s.BatchSize),
		erbatch.WithEvalBatchSize(s.EvalBatchSize),
		erbatch.WithLoaderOptions(s.Loader, s.Loader),
		erbatch.WithLeakCheck(s.LeakCheck),
	}
	if s.MaxClusterSize > 0 {
		opts = append(opts, erbatch.WithMaxClusterSizeInBatch(s.MaxClusterSize))
	}
	return opts
}

func parseInt64(v ResolvedValue, name string) (int64, error) {
	if v.Value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return 0, invalid(name, v, err)
	}
	return n, nil
}

func invalid(name string, v ResolvedValue, err error) error {
	from := string(v.Source)
	if v.From != "" {
		from += " " + v.From
	}
	return core.NewConfigurationError("invalid %s %q from %s", name, v.Value, from).WithCause(err)
}

func setDefault(dst *ResolvedValue, v string) {
	*dst = ResolvedValue{Value: v, Source: SourceDefault, From: "built-in default"}
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
