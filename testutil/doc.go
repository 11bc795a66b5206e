// Package testutil provides testing utilities for erbatch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating clustered records, rendering them as
// CSV, computing exact positive pairs by brute force, and measuring pair
// recall.
//
// # Clustered Records
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.ClusteredRows(testutil.RowSpec{Clusters: 50, MaxClusterSize: 6})
//	train, valid, test := testutil.SplitRows(rows, 0.8, 0.1)
//
// # Ground Truth
//
//	truth := testutil.BruteForcePositivePairs(rows, "cluster", "", "")
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, found)
package testutil
