// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "datasets/")
//	rows, err := rowstore.LoadBlob(ctx, store, "train.csv", opts, nil)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Managed (multipart when large) uploads for exported pair sets
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
