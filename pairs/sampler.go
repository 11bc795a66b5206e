package pairs

import (
	"github.com/hupe1980/erbatch/cluster"
	"github.com/hupe1980/erbatch/core"
)

// Positive returns every unordered 2-combination of members within each
// cluster. A cluster of n members contributes n(n-1)/2 pairs; singletons
// contribute none.
func Positive(d cluster.Dict) *Set {
	s := NewSet()
	for _, label := range d.Labels() {
		members := d.Members(label)
		for i, a := range members {
			for _, b := range members[i+1:] {
				s.Add(a, b)
			}
		}
	}
	return s
}

// PositiveLinkage returns, for each cluster, every pair with one member on
// the left side and one on the right. Same-side pairs are never positive,
// so a cluster contributes |left| x |right| pairs.
func PositiveLinkage(d cluster.Dict, sides cluster.SourceSets) *Set {
	s := NewSet()
	for _, label := range d.Labels() {
		var left, right []core.ID
		for _, id := range d.Members(label) {
			if sides.Left.Contains(id) {
				left = append(left, id)
			} else if sides.Right.Contains(id) {
				right = append(right, id)
			}
		}
		for _, l := range left {
			for _, r := range right {
				s.Add(l, r)
			}
		}
	}
	return s
}
