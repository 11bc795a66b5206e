// Package minio provides a BlobStore implementation using the MinIO client.
//
// Any S3-compatible object store (MinIO, Ceph, SeaweedFS, Garage) can hold
// dataset splits and exported pair sets through this package without pulling
// in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "datasets/")
//	splits, err := rowstore.LoadSplits(ctx, store, names, opts, nil)
package minio
