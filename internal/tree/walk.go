package tree

import (
	"fmt"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// lookupFunc resolves a card-set name to its current record.
type lookupFunc func(name string) (*types.CardSet, error)

// walk is the result of following parent links from one card set.
type walk struct {
	// path holds every name visited, in parent order, starting at the start set.
	path []string
	// loopAt is the index in path of the first name that was revisited, or -1
	// when the walk ended at a root.
	loopAt int
}

// looped reports whether the walk ran into a loop.
func (w walk) looped() bool {
	return w.loopAt >= 0
}

// loop returns the names forming the loop, starting at the revisited name.
// It is empty when the walk reached a root.
func (w walk) loop() []string {
	if !w.looped() {
		return []string{}
	}
	out := make([]string, len(w.path)-w.loopAt)
	copy(out, w.path[w.loopAt:])
	return out
}

// walkParents follows parent links from name until it reaches a root or a
// name it has already seen. Membership is tracked by name, the identity key
// of the domain, so differently loaded copies of a record compare equal.
func walkParents(name string, lookup lookupFunc) (walk, error) {
	seen := make(map[string]int)
	var path []string

	cur, err := lookup(name)
	if err != nil {
		return walk{}, err
	}
	for {
		if i, ok := seen[cur.Name]; ok {
			return walk{path: path, loopAt: i}, nil
		}
		seen[cur.Name] = len(path)
		path = append(path, cur.Name)
		if cur.IsRoot() {
			return walk{path: path, loopAt: -1}, nil
		}

		next, err := lookup(cur.Parent)
		if err != nil {
			return walk{}, fmt.Errorf("following parent %q of %q: %w", cur.Parent, cur.Name, err)
		}
		cur = next
	}
}
