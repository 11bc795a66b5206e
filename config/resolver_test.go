package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hupe1980/erbatch"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	cfgPath := writeConfig(t, `splits:
  train: s3://bucket/train.csv
  valid: s3://bucket/valid.csv
attributes:
  cluster: entity
batching:
  batch_size: 16
  eval_batch_size: 128
loader:
  num_workers: 2
`)

	t.Setenv("ERBATCH_BATCH_SIZE", "24")
	t.Setenv("ERBATCH_VALID", "/data/valid.csv")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: cfgPath,
		Flags:      Flags{BatchSize: "48", Seed: "7"},
	})
	require.NoError(t, err)

	assert.Equal(t, ResolvedValue{Value: "48", Source: SourceCLI, From: "--batch-size"}, resolved.BatchSize)
	assert.Equal(t, SourceEnv, resolved.Valid.Source)
	assert.Equal(t, "/data/valid.csv", resolved.Valid.Value)
	assert.Equal(t, SourceConfig, resolved.Train.Source)
	assert.Equal(t, SourceConfig, resolved.EvalBatchSize.Source)
	assert.Equal(t, "entity", resolved.ClusterAttr.Value)
	assert.Equal(t, SourceCLI, resolved.Seed.Source)
	assert.Equal(t, SourceDefault, resolved.LeakCheck.Source)

	s, err := resolved.Settings()
	require.NoError(t, err)
	assert.Equal(t, 48, s.BatchSize)
	assert.Equal(t, 128, s.EvalBatchSize)
	assert.Equal(t, int64(7), s.Seed)
	assert.Equal(t, 2, s.Loader.NumWorkers)
	assert.True(t, s.LeakCheck)
	assert.Equal(t, pairs.CompressionZSTD, s.Compression)
	assert.False(t, s.Attributes.IsLinkage())
}

func TestResolveConfig_MissingFile(t *testing.T) {
	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Flags:      Flags{Train: "train.csv"},
	})
	require.NoError(t, err)

	s, err := resolved.Settings()
	require.NoError(t, err)
	assert.Equal(t, "cluster", s.Attributes.Cluster)
	assert.Equal(t, erbatch.DefaultSeed, s.Seed)
	assert.Equal(t, erbatch.DefaultBatchSize, s.BatchSize)
	assert.Equal(t, erbatch.DefaultEvalBatchSize, s.EvalBatchSize)
	assert.Len(t, s.Options(), 5)
}

func TestResolveConfig_InvalidYAML(t *testing.T) {
	cfgPath := writeConfig(t, "splits: [unclosed\n")
	_, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestSettings_Linkage(t *testing.T) {
	cfgPath := writeConfig(t, `splits:
  train: train.csv
attributes:
  source: __source
`)

	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	require.NoError(t, err)

	_, err = resolved.Settings()
	assert.ErrorIs(t, err, erbatch.ErrConfiguration)
	assert.Contains(t, err.Error(), "source_attr")

	resolved, err = ResolveConfig(ResolveOptions{ConfigPath: cfgPath, Flags: Flags{LeftSource: "left"}})
	require.NoError(t, err)
	s, err := resolved.Settings()
	require.NoError(t, err)
	assert.True(t, s.Attributes.IsLinkage())
}

func TestSettings_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  string
	}{
		{"Seed", Flags{Train: "t.csv", Seed: "abc"}, "seed"},
		{"BatchSize", Flags{Train: "t.csv", BatchSize: "0"}, "batch sizes"},
		{"LeakCheck", Flags{Train: "t.csv", LeakCheck: "maybe"}, "leak_check"},
		{"Compression", Flags{Train: "t.csv", Compression: "gzip"}, "compression"},
		{"NoTrain", Flags{}, "train"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := ResolveConfig(ResolveOptions{
				ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
				Flags:      tt.flags,
			})
			require.NoError(t, err)

			_, err = resolved.Settings()
			require.Error(t, err)
			assert.ErrorIs(t, err, erbatch.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettings_NumWorkersAllCPUs(t *testing.T) {
	t.Setenv("ERBATCH_NUM_WORKERS", "-1")
	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		Flags:      Flags{Train: "t.csv", MaxClusterSize: "3"},
	})
	require.NoError(t, err)

	s, err := resolved.Settings()
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), s.Loader.NumWorkers)
	assert.Equal(t, 3, s.MaxClusterSize)
	assert.Len(t, s.Options(), 6)
}

func TestExpandUserPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data", "train.csv"), expandUserPath("~/data/train.csv"))
	assert.Equal(t, "s3://bucket/train.csv", expandUserPath("s3://bucket/train.csv"))
}

func TestSettings_Resource(t *testing.T) {
	cfgPath := writeConfig(t, `splits:
  train: minio://datasets/train.csv
storage:
  endpoint: localhost:9000
  memory_limit_bytes: 1048576
  io_limit_bytes_per_sec: 4096
`)

	resolved, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath})
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, resolved.MaxConcurrentLoads.Source)

	s, err := resolved.Settings()
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Resource.MaxConcurrentLoads)
	assert.Equal(t, int64(1<<20), s.Resource.MemoryLimitBytes)
	assert.Equal(t, int64(4096), s.Resource.IOLimitBytesPerSec)
	assert.Equal(t, "localhost:9000", s.Endpoint)
}
