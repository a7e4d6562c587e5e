package sampler

import (
	"slices"
	"sort"
)

// StatSet is the set of metric names that form the columns of a run. It
// is built during warm-up and frozen before the first row is written.
type StatSet struct {
	names  map[string]struct{}
	frozen []string
}

// NewStatSet returns an empty, unfrozen StatSet.
func NewStatSet() *StatSet {
	return &StatSet{names: make(map[string]struct{})}
}

// Add folds names into the set. It panics once the set is frozen.
func (s *StatSet) Add(names ...string) {
	if s.frozen != nil {
		panic("sampler: Add on frozen StatSet")
	}

	for _, n := range names {
		s.names[n] = struct{}{}
	}
}

// Freeze fixes the column order (sorted by name) and returns it. Calling
// Freeze again returns the same columns.
func (s *StatSet) Freeze() []string {
	if s.frozen == nil {
		s.frozen = make([]string, 0, len(s.names))
		for n := range s.names {
			s.frozen = append(s.frozen, n)
		}

		sort.Strings(s.frozen)
	}

	return slices.Clone(s.frozen)
}

// Frozen reports whether Freeze has been called.
func (s *StatSet) Frozen() bool {
	return s.frozen != nil
}

// Contains reports whether name is a member.
func (s *StatSet) Contains(name string) bool {
	_, ok := s.names[name]

	return ok
}
