package erbatch

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/erbatch/core"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    pairGauge    *prometheus.GaugeVec
//	    batchCounter *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordBatch(split core.Split, rows int) {
//	    p.batchCounter.WithLabelValues(string(split)).Inc()
//	}
type MetricsCollector interface {
	// RecordSetup is called after each stage setup.
	// pairs is the number of positive pairs built for the stage, duration
	// the time taken, err is nil if successful.
	RecordSetup(stage Stage, pairs int, duration time.Duration, err error)

	// RecordBatch is called for every batch handed to a consumer.
	// rows is the number of rows (or pairs, in pairwise mode) in the batch.
	RecordBatch(split core.Split, rows int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSetup(Stage, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(core.Split, int)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SetupCount      atomic.Int64
	SetupErrors     atomic.Int64
	SetupTotalNanos atomic.Int64
	PairsBuilt      atomic.Int64
	TrainBatches    atomic.Int64
	TrainRows       atomic.Int64
	ValidBatches    atomic.Int64
	ValidRows       atomic.Int64
	TestBatches     atomic.Int64
	TestRows        atomic.Int64
}

// RecordSetup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSetup(_ Stage, pairs int, duration time.Duration, err error) {
	b.SetupCount.Add(1)
	b.SetupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SetupErrors.Add(1)
		return
	}
	b.PairsBuilt.Add(int64(pairs))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(split core.Split, rows int) {
	switch split {
	case core.SplitTrain:
		b.TrainBatches.Add(1)
		b.TrainRows.Add(int64(rows))
	case core.SplitValid:
		b.ValidBatches.Add(1)
		b.ValidRows.Add(int64(rows))
	case core.SplitTest:
		b.TestBatches.Add(1)
		b.TestRows.Add(int64(rows))
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SetupCount:    b.SetupCount.Load(),
		SetupErrors:   b.SetupErrors.Load(),
		SetupAvgNanos: b.getAvgSetupNanos(),
		PairsBuilt:    b.PairsBuilt.Load(),
		TrainBatches:  b.TrainBatches.Load(),
		TrainRows:     b.TrainRows.Load(),
		ValidBatches:  b.ValidBatches.Load(),
		ValidRows:     b.ValidRows.Load(),
		TestBatches:   b.TestBatches.Load(),
		TestRows:      b.TestRows.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSetupNanos() int64 {
	count := b.SetupCount.Load()
	if count == 0 {
		return 0
	}
	return b.SetupTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SetupCount    int64
	SetupErrors   int64
	SetupAvgNanos int64
	PairsBuilt    int64
	TrainBatches  int64
	TrainRows     int64
	ValidBatches  int64
	ValidRows     int64
	TestBatches   int64
	TestRows      int64
}
