package core

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of strings that marshals to and from a sorted JSON array.
// Rosters and per-session attendance marks are sets by invariant.
type StringSet map[string]bool

func NewStringSet(elems ...string) StringSet {
	set := make(StringSet, len(elems))
	for _, e := range elems {
		set[e] = true
	}
	return set
}

func (s StringSet) Has(elem string) bool { return s[elem] }

func (s StringSet) Add(elem string) { s[elem] = true }

func (s StringSet) Remove(elem string) { delete(s, elem) }

func (s StringSet) Copy() StringSet {
	cp := make(StringSet, len(s))
	for e := range s {
		cp[e] = true
	}
	return cp
}

// Intersect returns the elements present in both sets.
func (s StringSet) Intersect(other StringSet) StringSet {
	res := make(StringSet)
	for e := range s {
		if other.Has(e) {
			res[e] = true
		}
	}
	return res
}

// Intersects reports whether both sets share at least one element.
func (s StringSet) Intersects(other StringSet) bool {
	for e := range s {
		if other.Has(e) {
			return true
		}
	}
	return false
}

// Union returns the elements present in either set.
func (s StringSet) Union(other StringSet) StringSet {
	res := s.Copy()
	for e := range other {
		res[e] = true
	}
	return res
}

func (s StringSet) Sorted() []string {
	elems := make([]string, 0, len(s))
	for e := range s {
		elems = append(elems, e)
	}
	sort.Strings(elems)
	return elems
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var elems []string
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	*s = NewStringSet(elems...)
	return nil
}
