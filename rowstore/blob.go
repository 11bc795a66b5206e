package rowstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/erbatch/blobstore"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// LoadBlob reads a CSV blob into a Store.
//
// Blobs named *.zst or *.lz4 are decompressed on the fly. ctrl may be nil;
// when set, the load runs under one of its leases: a load slot, the blob
// size reserved against the memory budget and reads throttled by the IO limit.
func LoadBlob(ctx context.Context, bs blobstore.BlobStore, name string, opts CSVOptions, ctrl *resource.Controller) (*Store, error) {
	lease, err := ctrl.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	if err := lease.Reserve(ctx, blob.Size()); err != nil {
		return nil, err
	}

	r := lease.Reader(ctx, blobstore.NewReader(ctx, blob))

	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream %s: %w", name, err)
		}
		defer dec.Close()
		r = dec
	case strings.HasSuffix(name, ".lz4"):
		r = lz4.NewReader(r)
	}

	s, err := LoadCSV(r, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return s, nil
}

// SplitNames names the blobs holding each split. An empty name yields an
// empty store for that split.
type SplitNames struct {
	Train string
	Valid string
	Test  string
}

// Splits holds the loaded row stores of one dataset.
type Splits struct {
	Train *Store
	Valid *Store
	Test  *Store
}

// Get returns the store of split s.
func (s Splits) Get(split core.Split) *Store {
	switch split {
	case core.SplitTrain:
		return s.Train
	case core.SplitValid:
		return s.Valid
	case core.SplitTest:
		return s.Test
	default:
		return nil
	}
}

// LoadSplits loads the three splits concurrently.
// The first failing load cancels the others.
func LoadSplits(ctx context.Context, bs blobstore.BlobStore, names SplitNames, opts CSVOptions, ctrl *resource.Controller) (Splits, error) {
	var out Splits

	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, dst **Store) {
		if name == "" {
			*dst = Empty()
			return
		}
		g.Go(func() error {
			s, err := LoadBlob(gctx, bs, name, opts, ctrl)
			if err != nil {
				return err
			}
			*dst = s
			return nil
		})
	}

	load(names.Train, &out.Train)
	load(names.Valid, &out.Valid)
	load(names.Test, &out.Test)

	if err := g.Wait(); err != nil {
		return Splits{}, err
	}
	return out, nil
}
