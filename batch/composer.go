package batch

import (
	"fmt"
	"iter"

	"github.com/hupe1980/erbatch/cluster"
	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/rowstore"
	"github.com/hupe1980/erbatch/util"
)

// ComposerConfig configures a training epoch.
type ComposerConfig struct {
	// BatchSize is the number of clusters packed into each batch.
	BatchSize int

	// MaxClusterSize caps the rows a single cluster supplies to one batch.
	MaxClusterSize int

	// Seed is the base seed. The epoch seed is Seed + Epoch.
	Seed int64

	// Epoch is the zero-based epoch index. A negative value means no epoch
	// is known and Seed is used unchanged.
	Epoch int

	// Sides marks the linkage sources; nil in deduplication mode.
	Sides *cluster.SourceSets
}

// Composer packs clusters into training batches for one epoch.
//
// Clusters are shuffled with the epoch seed and walked in order; each batch
// takes up to BatchSize clusters. A cluster larger than MaxClusterSize is
// shuffled with the same generator, its first MaxClusterSize members go into
// the current batch and the rest is carried over in MaxClusterSize chunks,
// one chunk per following batch, ahead of unseen clusters. Every row is
// emitted exactly once per epoch and no batch holds more than
// MaxClusterSize rows of any cluster.
type Composer struct {
	store *rowstore.Store
	dict  cluster.Dict
	cfg   ComposerConfig
}

// NewComposer validates cfg and returns a composer over dict. A member ID
// missing from store is a *core.SchemaError.
func NewComposer(store *rowstore.Store, dict cluster.Dict, cfg ComposerConfig) (*Composer, error) {
	if cfg.BatchSize <= 0 {
		return nil, core.NewConfigurationError("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.MaxClusterSize <= 0 {
		return nil, core.NewConfigurationError("max cluster size in batch must be positive, got %d", cfg.MaxClusterSize)
	}
	for _, label := range dict.Labels() {
		for _, id := range dict.Members(label) {
			if !store.Has(id) {
				return nil, &core.SchemaError{
					Attr:   rowstore.DefaultIDAttr,
					ID:     id,
					HasID:  true,
					Split:  core.SplitTrain,
					Reason: fmt.Sprintf("member of cluster %q is not a row of the store", label),
				}
			}
		}
	}
	return &Composer{store: store, dict: dict, cfg: cfg}, nil
}

// Seed returns the effective seed of the epoch.
func (c *Composer) Seed() int64 {
	return util.EpochSeed(c.cfg.Seed, c.cfg.Epoch)
}

type chunk struct {
	label string
	ids   []core.ID
}

// Batches returns the epoch's batch sequence. Each call replays the same
// sequence from the start.
func (c *Composer) Batches() iter.Seq[ClusterBatch] {
	return func(yield func(ClusterBatch) bool) {
		rng := util.NewRNG(c.Seed())
		limit := c.cfg.MaxClusterSize

		labels := c.dict.Labels()
		util.ShuffleSlice(rng, labels)

		var carry []chunk
		next := 0
		for {
			units := make([]chunk, 0, c.cfg.BatchSize)

			// Leftovers of oversized clusters go first, one chunk each.
			var still []chunk
			for len(carry) > 0 && len(units) < c.cfg.BatchSize {
				ch := carry[0]
				carry = carry[1:]
				n := min(limit, len(ch.ids))
				units = append(units, chunk{label: ch.label, ids: ch.ids[:n]})
				if n < len(ch.ids) {
					still = append(still, chunk{label: ch.label, ids: ch.ids[n:]})
				}
			}

			var fresh []chunk
			for len(units) < c.cfg.BatchSize && next < len(labels) {
				label := labels[next]
				next++
				members := c.dict.Members(label)
				if len(members) > limit {
					util.ShuffleSlice(rng, members)
					fresh = append(fresh, chunk{label: label, ids: members[limit:]})
					members = members[:limit]
				}
				units = append(units, chunk{label: label, ids: members})
			}

			carry = append(append(carry, still...), fresh...)

			if len(units) == 0 {
				return
			}
			if !yield(c.assemble(rng, units)) {
				return
			}
		}
	}
}

func (c *Composer) assemble(rng *util.RNG, units []chunk) ClusterBatch {
	n := 0
	for _, u := range units {
		n += len(u.ids)
	}

	b := ClusterBatch{
		Rows:   make([]rowstore.Row, 0, n),
		Labels: make([]string, 0, n),
		Sides:  c.cfg.Sides,
	}
	for _, u := range units {
		for _, id := range u.ids {
			row, _ := c.store.Get(id)
			b.Rows = append(b.Rows, row)
			b.Labels = append(b.Labels, u.label)
		}
	}

	rng.Shuffle(len(b.Rows), func(i, j int) {
		b.Rows[i], b.Rows[j] = b.Rows[j], b.Rows[i]
		b.Labels[i], b.Labels[j] = b.Labels[j], b.Labels[i]
	})
	return b
}
