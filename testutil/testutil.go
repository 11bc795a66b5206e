package testutil

import (
	"bytes"
	"encoding/csv"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"sync"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/pairs"
	"github.com/hupe1980/erbatch/rowstore"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// Real duplicate groups follow this shape: most entities appear once or
// twice, a few appear very often.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// RowSpec describes a generated clustered record set.
type RowSpec struct {
	// Clusters is the number of duplicate groups.
	Clusters int
	// MaxClusterSize bounds the size of each group. Sizes are Zipf
	// distributed in [1, MaxClusterSize].
	MaxClusterSize int
	// FirstID is the ID of the first generated row.
	FirstID core.ID
	// ClusterAttr names the label attribute. Default: "cluster".
	ClusterAttr string
	// SourceAttr, when set, assigns every row to "left" or "right" at random.
	SourceAttr string
}

// ClusteredRows generates rows grouped into clusters. Rows of a cluster are
// contiguous and IDs are assigned sequentially.
func (r *RNG) ClusteredRows(spec RowSpec) []rowstore.Row {
	if spec.ClusterAttr == "" {
		spec.ClusterAttr = "cluster"
	}
	if spec.MaxClusterSize <= 0 {
		spec.MaxClusterSize = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []rowstore.Row
	id := spec.FirstID
	for c := range spec.Clusters {
		size := 1 + r.zipfLocked(spec.MaxClusterSize, 1.2)
		for i := range size {
			attrs := map[string]string{
				spec.ClusterAttr: strconv.Itoa(c),
				"name":           "entity-" + strconv.Itoa(c) + "-" + strconv.Itoa(i),
			}
			if spec.SourceAttr != "" {
				side := "right"
				if r.rand.Intn(2) == 0 {
					side = "left"
				}
				attrs[spec.SourceAttr] = side
			}
			rows = append(rows, rowstore.Row{ID: id, Attrs: attrs})
			id++
		}
	}
	return rows
}

// SplitRows partitions rows into train, validation and test by position.
// The split points are floor(n*train) and floor(n*(train+valid)); clusters
// may straddle split borders, as they do in real data.
func SplitRows(rows []rowstore.Row, train, valid float64) (tr, va, te []rowstore.Row) {
	n := len(rows)
	a := int(float64(n) * train)
	b := min(n, int(float64(n)*(train+valid)))
	return rows[:a], rows[a:b], rows[b:]
}

// MustStore builds a store from rows, panicking on duplicate IDs.
func MustStore(rows []rowstore.Row) *rowstore.Store {
	s, err := rowstore.FromRows(rows...)
	if err != nil {
		panic(err)
	}
	return s
}

// CSV renders rows as a header-first CSV document with an "id" column
// followed by attrs.
func CSV(rows []rowstore.Row, attrs ...string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(append([]string{rowstore.DefaultIDAttr}, attrs...))
	for _, row := range rows {
		record := make([]string, 0, len(attrs)+1)
		record = append(record, strconv.FormatUint(uint64(row.ID), 10))
		for _, a := range attrs {
			record = append(record, row.Attrs[a])
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes()
}

// BruteForcePositivePairs compares every row with every other row and
// returns the pairs sharing clusterAttr. With sourceAttr set, only pairs
// with exactly one row whose source equals leftValue are kept.
func BruteForcePositivePairs(rows []rowstore.Row, clusterAttr, sourceAttr, leftValue string) *pairs.Set {
	out := pairs.NewSet()
	for i, a := range rows {
		for _, b := range rows[i+1:] {
			if a.Attrs[clusterAttr] != b.Attrs[clusterAttr] {
				continue
			}
			if sourceAttr != "" && (a.Attrs[sourceAttr] == leftValue) == (b.Attrs[sourceAttr] == leftValue) {
				continue
			}
			out.Add(a.ID, b.ID)
		}
	}
	return out
}

// ComputeRecall returns the fraction of groundTruth pairs present in found.
func ComputeRecall(groundTruth, found *pairs.Set) float64 {
	if groundTruth.Len() == 0 {
		if found.Len() == 0 {
			return 1.0
		}
		return 0.0
	}

	hits := 0
	for p := range groundTruth.All() {
		if found.Contains(p.A, p.B) {
			hits++
		}
	}
	return float64(hits) / float64(groundTruth.Len())
}

// ClusterSizes returns the sorted sizes of the clusters in rows.
func ClusterSizes(rows []rowstore.Row, clusterAttr string) []int {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Attrs[clusterAttr]]++
	}
	sizes := make([]int, 0, len(counts))
	for _, n := range counts {
		sizes = append(sizes, n)
	}
	slices.Sort(sizes)
	return sizes
}
