// Package cluster groups rows by their ground-truth duplicate label and,
// for record linkage, partitions them into left and right sources.
package cluster

import (
	"maps"
	"slices"

	"github.com/hupe1980/erbatch/core"
	"github.com/hupe1980/erbatch/idset"
	"github.com/hupe1980/erbatch/rowstore"
)

// Dict maps a cluster label to the IDs of its members.
// Every member set is non-empty.
type Dict map[string]*idset.Set

// Index groups store rows by the value of attr.
//
// Labels are opaque keys; coercing them to a canonical form is the loader's
// job. A row without attr yields a SchemaError naming that row.
func Index(store *rowstore.Store, attr string) (Dict, error) {
	d := make(Dict)
	for row := range store.All() {
		label, ok := row.Get(attr)
		if !ok {
			return nil, core.MissingAttribute(attr, row.ID)
		}
		members, ok := d[label]
		if !ok {
			members = idset.New()
			d[label] = members
		}
		members.Add(row.ID)
	}
	return d, nil
}

// Labels returns the cluster labels in ascending order.
func (d Dict) Labels() []string {
	return slices.Sorted(maps.Keys(d))
}

// Members returns the member IDs of label in ascending order.
func (d Dict) Members(label string) []core.ID {
	return d[label].Slice()
}

// Rows returns the total number of rows over all clusters.
func (d Dict) Rows() int {
	n := 0
	for _, members := range d {
		n += members.Len()
	}
	return n
}

// Largest returns the size of the biggest cluster.
func (d Dict) Largest() int {
	n := 0
	for _, members := range d {
		n = max(n, members.Len())
	}
	return n
}
