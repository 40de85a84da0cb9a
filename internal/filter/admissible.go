// Package filter evaluates structured and textual predicates against corpus documents.
package filter

import "sort"

// AdmissibleSet is the set of corpus indices a ranking may return.
// The zero value is an explicit empty set; use Unrestricted for "everything".
type AdmissibleSet struct {
	unrestricted bool
	indices      []int
	members      map[int]struct{}
}

// Unrestricted returns the sentinel set that admits every index without materializing them.
func Unrestricted() AdmissibleSet {
	return AdmissibleSet{unrestricted: true}
}

// NewAdmissibleSet returns an explicit set over indices. Duplicates are removed and the
// indices are kept in ascending order.
func NewAdmissibleSet(indices []int) AdmissibleSet {
	members := make(map[int]struct{}, len(indices))
	sorted := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := members[i]; ok {
			continue
		}
		members[i] = struct{}{}
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)
	return AdmissibleSet{indices: sorted, members: members}
}

// IsUnrestricted reports whether the set admits every index.
func (a AdmissibleSet) IsUnrestricted() bool { return a.unrestricted }

// Contains reports whether index i is admissible.
func (a AdmissibleSet) Contains(i int) bool {
	if a.unrestricted {
		return true
	}
	_, ok := a.members[i]
	return ok
}

// Len returns the number of explicit indices, or -1 when unrestricted.
func (a AdmissibleSet) Len() int {
	if a.unrestricted {
		return -1
	}
	return len(a.indices)
}

// Indices returns the explicit indices in ascending order, or nil when unrestricted.
func (a AdmissibleSet) Indices() []int {
	if a.unrestricted {
		return nil
	}
	out := make([]int, len(a.indices))
	copy(out, a.indices)
	return out
}

// Intersect returns the indices admitted by both sets.
func (a AdmissibleSet) Intersect(b AdmissibleSet) AdmissibleSet {
	switch {
	case a.unrestricted:
		return b
	case b.unrestricted:
		return a
	}
	out := make([]int, 0, min(len(a.indices), len(b.indices)))
	for _, i := range a.indices {
		if b.Contains(i) {
			out = append(out, i)
		}
	}
	return NewAdmissibleSet(out)
}
