// Package blobstore provides the storage abstraction for dataset splits and
// exported pair sets.
//
// BlobStore is the interface for reading and writing whole blobs (CSV splits,
// encoded pair sets). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem
//   - MemoryStore: In-process map, for tests
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
