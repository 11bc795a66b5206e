package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/erbatch/blobstore"
	miniostore "github.com/hupe1980/erbatch/blobstore/minio"
	s3store "github.com/hupe1980/erbatch/blobstore/s3"
	"github.com/hupe1980/erbatch/rowstore"
)

// location is a parsed split or output URL. Local paths have an empty
// scheme and bucket; Key then holds the path as given.
type location struct {
	Scheme string
	Bucket string
	Key    string
}

func parseLocation(raw string) (location, error) {
	for _, scheme := range []string{"s3", "minio"} {
		rest, ok := strings.CutPrefix(raw, scheme+"://")
		if !ok {
			continue
		}
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return location{}, fmt.Errorf("%s: missing bucket", raw)
		}
		return location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	}
	if strings.Contains(raw, "://") {
		return location{}, fmt.Errorf("%s: unsupported scheme", raw)
	}
	return location{Key: raw}, nil
}

func (l location) sameStore(o location) bool {
	return l.Scheme == o.Scheme && l.Bucket == o.Bucket
}

// join returns the location of name below l.
func (l location) join(name string) location {
	if l.Scheme == "" {
		l.Key = strings.TrimSuffix(l.Key, string(os.PathSeparator)) + string(os.PathSeparator) + name
		return l
	}
	l.Key = path.Join(l.Key, name)
	return l
}

// openStore returns the blob store addressed by l. For S3 the default AWS
// credential chain is used; endpoint, when set, selects a compatible
// service. MinIO reads MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
func openStore(ctx context.Context, l location, endpoint string) (blobstore.BlobStore, error) {
	switch l.Scheme {
	case "":
		return blobstore.NewLocalStore(""), nil
	case "s3":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, l.Bucket, ""), nil
	case "minio":
		if endpoint == "" {
			endpoint = "localhost:9000"
		}
		secure := strings.HasPrefix(endpoint, "https://")
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: secure,
		})
		if err != nil {
			return nil, fmt.Errorf("creating MinIO client: %w", err)
		}
		return miniostore.NewStore(client, l.Bucket, ""), nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", l.Scheme)
	}
}

// csvOptions picks the delimiter from the blob name: *.tsv, optionally
// compressed, is tab separated.
func csvOptions(name, clusterAttr string) rowstore.CSVOptions {
	opts := rowstore.CSVOptions{ClusterAttr: clusterAttr}
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".zst"), ".lz4")
	if strings.HasSuffix(base, ".tsv") {
		opts.Comma = '\t'
	}
	return opts
}
