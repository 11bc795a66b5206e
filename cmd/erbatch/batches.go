package main

import (
	"context"
	"io"

	"github.com/hupe1980/erbatch"
	"github.com/hupe1980/erbatch/batch"
	"github.com/hupe1980/erbatch/codec"
	"github.com/hupe1980/erbatch/loader"
	"github.com/hupe1980/erbatch/util"
)

type epochStats struct {
	Epoch      int   `json:"epoch"`
	Seed       int64 `json:"seed"`
	Batches    int   `json:"batches"`
	Rows       int   `json:"rows"`
	MaxRows    int   `json:"max_rows"`
	MaxCluster int   `json:"max_cluster_rows"`
	Positives  int   `json:"in_batch_positives"`
}

type batchReport struct {
	Mode         string                    `json:"mode"`
	Epochs       []epochStats              `json:"epochs"`
	ValidBatches int                       `json:"valid_batches"`
	TestBatches  int                       `json:"test_batches"`
	Metrics      erbatch.BasicMetricsStats `json:"metrics"`
	Loader       loader.Options            `json:"loader"`
}

func runBatches(ctx context.Context, c commonArgs, cmd batchesCmd, logger *erbatch.Logger, w io.Writer) error {
	s, err := c.settings(nil)
	if err != nil {
		return err
	}

	mc := &erbatch.BasicMetricsCollector{}
	dm, err := loadModule(ctx, s, logger, erbatch.WithMetricsCollector(mc))
	if err != nil {
		return err
	}

	report := batchReport{Mode: dm.Mode().String(), Loader: s.Loader}
	for epoch := range max(cmd.Epochs, 1) {
		tl, err := dm.TrainLoader(epoch)
		if err != nil {
			return err
		}
		st := epochStats{Epoch: epoch, Seed: util.EpochSeed(s.Seed, epoch)}
		for b, err := range tl.All(ctx) {
			if err != nil {
				return err
			}
			st.Batches++
			st.Rows += b.Len()
			st.MaxRows = max(st.MaxRows, b.Len())
			if cb, ok := b.(batch.ClusterBatch); ok {
				st.MaxCluster = max(st.MaxCluster, largestContribution(cb))
				st.Positives += cb.Positives().Len()
			}
		}
		report.Epochs = append(report.Epochs, st)
	}

	for _, ev := range []struct {
		open func() (*loader.DataLoader[batch.Batch], error)
		dst  *int
	}{{dm.ValidLoader, &report.ValidBatches}, {dm.TestLoader, &report.TestBatches}} {
		l, err := ev.open()
		if err != nil {
			return err
		}
		for _, err := range l.All(ctx) {
			if err != nil {
				return err
			}
			*ev.dst++
		}
	}

	report.Metrics = mc.GetStats()

	data, err := codec.Default.Marshal(report)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func largestContribution(b batch.ClusterBatch) int {
	counts := make(map[string]int, len(b.Labels))
	n := 0
	for _, label := range b.Labels {
		counts[label]++
		n = max(n, counts[label])
	}
	return n
}
