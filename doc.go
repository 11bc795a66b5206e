// Package erbatch prepares training and evaluation batches for entity
// resolution embedding models.
//
// Records labeled with a ground-truth cluster (duplicate group) are turned
// into the positive-pair supervision signal, checked for ID leakage between
// train/validation/test splits, and packed into cluster-aware mini-batches
// for contrastive learning.
//
// # Quick Start
//
// Deduplication (duplicates anywhere in one source):
//
//	splits, _ := rowstore.LoadSplits(ctx, blobstore.NewLocalStore("./data"),
//	    rowstore.SplitNames{Train: "train.csv", Valid: "valid.csv", Test: "test.csv"},
//	    rowstore.CSVOptions{ClusterAttr: "cluster"}, nil)
//
//	dm, err := erbatch.NewDeduplication(splits.Train, splits.Valid, splits.Test, "cluster",
//	    erbatch.WithBatchSize(32),
//	    erbatch.WithEvalBatchSize(64),
//	)
//	if err != nil {
//	    // *erbatch.DataLeakageError, *erbatch.ConfigurationError, ...
//	}
//	_ = dm.Setup(ctx, erbatch.StageFit)
//
//	for epoch := range 10 {
//	    train, _ := dm.TrainLoader(epoch)
//	    for b, err := range train.All(ctx) {
//	        cb := b.(batch.ClusterBatch)
//	        // feed cb.Rows, supervise with cb.Positives()
//	    }
//	}
//
// Record linkage (duplicates span a left and a right source):
//
//	dm, err := erbatch.NewLinkage(train, valid, test, "cluster", "__source", "left")
//
// Pairwise (curated positive and negative pairs):
//
//	dm, err := erbatch.NewPairwise(rows, erbatch.PairwiseSets{TrainPos: pos, TrainNeg: neg, ...})
//
// # Reproducibility
//
// Training batches are reshuffled every epoch with seed + epoch, so the
// same seed and epoch always produce the same batches. Evaluation batches
// are never shuffled.
//
// # Errors
//
// Misconfigured experiments fail fast with one of three error types:
// ConfigurationError, SchemaError and DataLeakageError. None of them is
// retryable.
package erbatch
