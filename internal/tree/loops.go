package tree

import (
	"sort"
	"strings"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// DetectLoop reports whether following parent links from start revisits a
// card set before reaching a root. The walk starts from the stored record
// named start.Name, not from start's possibly stale Parent field.
// Returns ErrInvalidArgument when start is nil.
func (s *Service) DetectLoop(start *types.CardSet) (bool, error) {
	if start == nil {
		return false, types.ErrInvalidArgument
	}
	w, err := walkParents(start.Name, s.table.Get)
	if err != nil {
		return false, err
	}
	return w.looped(), nil
}

// LoopNames returns the names of the card sets forming the loop reached from
// start, in parent order beginning with the first revisited card set. Any
// acyclic prefix leading into the loop is left out. When no loop is reached
// the result is empty, not an error, so callers may ask about any name.
// Returns ErrInvalidArgument when start is nil.
func (s *Service) LoopNames(start *types.CardSet) ([]string, error) {
	if start == nil {
		return nil, types.ErrInvalidArgument
	}
	w, err := walkParents(start.Name, s.table.Get)
	if err != nil {
		return nil, err
	}
	return w.loop(), nil
}

// Ancestors returns the parent chain of the named card set from its parent up
// to its root. Returns a *LoopError when the chain never reaches a root.
func (s *Service) Ancestors(name string) ([]string, error) {
	w, err := walkParents(name, s.table.Get)
	if err != nil {
		return nil, err
	}
	if w.looped() {
		return nil, &LoopError{Names: w.loop()}
	}
	return w.path[1:], nil
}

// Loops scans the whole table and returns every distinct loop. Each loop is
// rotated to start at its smallest name and keeps parent order from there;
// loops are sorted by that first name. An acyclic table yields an empty slice.
func (s *Service) Loops() ([][]string, error) {
	all, err := s.table.Fetch(nil)
	if err != nil {
		return nil, err
	}
	return findLoops(all, snapshot(all))
}

// findLoops walks from every card set not already covered by an earlier walk.
// A walk that reaches covered ground can only rediscover a known loop, which
// the canonical key filters out.
func findLoops(all []*types.CardSet, lookup lookupFunc) ([][]string, error) {
	covered := make(map[string]bool, len(all))
	reported := make(map[string]bool)
	loops := [][]string{}

	for _, cs := range all {
		if covered[cs.Name] {
			continue
		}
		w, err := walkParents(cs.Name, lookup)
		if err != nil {
			return nil, err
		}
		for _, name := range w.path {
			covered[name] = true
		}
		if !w.looped() {
			continue
		}
		loop := canonicalLoop(w.loop())
		key := strings.Join(loop, "\x00")
		if reported[key] {
			continue
		}
		reported[key] = true
		loops = append(loops, loop)
	}

	sort.Slice(loops, func(i, j int) bool { return loops[i][0] < loops[j][0] })
	return loops, nil
}

// canonicalLoop rotates loop so it starts at its smallest name.
func canonicalLoop(loop []string) []string {
	first := 0
	for i, name := range loop {
		if name < loop[first] {
			first = i
		}
	}
	out := make([]string, 0, len(loop))
	out = append(out, loop[first:]...)
	return append(out, loop[:first]...)
}

// snapshot indexes a fetched table by name so repeated walks do not go back
// to the store.
func snapshot(all []*types.CardSet) lookupFunc {
	byName := make(map[string]*types.CardSet, len(all))
	for _, cs := range all {
		byName[cs.Name] = cs
	}
	return func(name string) (*types.CardSet, error) {
		cs, ok := byName[name]
		if !ok {
			return nil, types.ErrNotFound
		}
		return cs, nil
	}
}
