package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

var (
	_ types.CardSetTable = (*table)(nil)
	_ types.CardSetTable = state(nil)
)

// table is the locked accessor handed out by Backend.CardSets. Every call
// checks that the backend is still attached, then delegates to the state.
type table struct {
	backend *Backend
}

func (t *table) read(fn func(s state) error) error {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return types.ErrCatalogDetached
	}
	return fn(t.backend.sets)
}

func (t *table) write(fn func(s state) error) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrCatalogDetached
	}
	return fn(t.backend.sets)
}

func (t *table) Get(name string) (*types.CardSet, error) {
	var cs *types.CardSet
	err := t.read(func(s state) error {
		var err error
		cs, err = s.Get(name)
		return err
	})
	return cs, err
}

func (t *table) Create(cs *types.CardSet) error {
	return t.write(func(s state) error { return s.Create(cs) })
}

func (t *table) Update(cs *types.CardSet) error {
	return t.write(func(s state) error { return s.Update(cs) })
}

func (t *table) SetParent(name, parent string) error {
	return t.write(func(s state) error { return s.SetParent(name, parent) })
}

func (t *table) Rename(oldName, newName string) error {
	return t.write(func(s state) error { return s.Rename(oldName, newName) })
}

func (t *table) Delete(name string) error {
	return t.write(func(s state) error { return s.Delete(name) })
}

func (t *table) Fetch(filter types.Filter) ([]*types.CardSet, error) {
	var out []*types.CardSet
	err := t.read(func(s state) error {
		var err error
		out, err = s.Fetch(filter)
		return err
	})
	return out, err
}

// Atomic runs fn against a copy of the store and swaps the copy in only when
// fn succeeds.
func (t *table) Atomic(fn func(tx types.CardSetTable) error) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrCatalogDetached
	}
	working := t.backend.sets.clone()
	if err := fn(working); err != nil {
		return err
	}
	t.backend.sets = working
	return nil
}

// state is the unlocked map of card sets keyed by name. It doubles as the
// transactional view passed to Atomic callbacks.
type state map[string]*types.CardSet

func (s state) clone() state {
	cp := make(state, len(s))
	for k, v := range s {
		cp[k] = v.Clone()
	}
	return cp
}

func (s state) Get(name string) (*types.CardSet, error) {
	cs, ok := s[types.CanonicalName(name)]
	if !ok {
		return nil, types.ErrNotFound
	}
	return cs.Clone(), nil
}

func (s state) Create(cs *types.CardSet) error {
	if cs == nil {
		return types.ErrInvalidData
	}
	if err := cs.Validate(); err != nil {
		return err
	}
	if _, ok := s[cs.Name]; ok {
		return types.ErrDuplicateName
	}
	if cs.Parent != "" {
		if _, ok := s[cs.Parent]; !ok {
			return types.ErrNotFound
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	cs.CardSetID = id.String()
	cs.CreatedAt = now
	cs.UpdatedAt = now
	s[cs.Name] = cs.Clone()
	return nil
}

func (s state) Update(cs *types.CardSet) error {
	if cs == nil {
		return types.ErrInvalidData
	}
	cur, ok := s[types.CanonicalName(cs.Name)]
	if !ok {
		return types.ErrNotFound
	}
	cur.Author = cs.Author
	cur.Comment = cs.Comment
	cur.Annotations = cs.Annotations
	cur.InUse = cs.InUse
	cur.UpdatedAt = time.Now().UTC()
	cs.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s state) SetParent(name, parent string) error {
	parent = types.CanonicalName(parent)
	cur, ok := s[types.CanonicalName(name)]
	if !ok {
		return types.ErrNotFound
	}
	if parent != "" {
		if _, ok := s[parent]; !ok {
			return types.ErrNotFound
		}
	}
	cur.Parent = parent
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (s state) Rename(oldName, newName string) error {
	oldName = types.CanonicalName(oldName)
	cur, ok := s[oldName]
	if !ok {
		return types.ErrNotFound
	}
	newName, err := types.NormalizeName(newName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if _, ok := s[newName]; ok {
		return types.ErrDuplicateName
	}

	now := time.Now().UTC()
	delete(s, oldName)
	cur.Name = newName
	cur.UpdatedAt = now
	s[newName] = cur
	for _, cs := range s {
		if cs.Parent == oldName {
			cs.Parent = newName
			cs.UpdatedAt = now
		}
	}
	return nil
}

func (s state) Delete(name string) error {
	name = types.CanonicalName(name)
	if _, ok := s[name]; !ok {
		return types.ErrNotFound
	}
	delete(s, name)
	return nil
}

func (s state) Fetch(filter types.Filter) ([]*types.CardSet, error) {
	match, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}
	out := []*types.CardSet{}
	for _, cs := range s {
		if match(cs) {
			out = append(out, cs.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Atomic on a state is already inside a transaction; fn runs directly.
func (s state) Atomic(fn func(tx types.CardSetTable) error) error {
	return fn(s)
}

func compileFilter(filter types.Filter) (func(*types.CardSet) bool, error) {
	var checks []func(*types.CardSet) bool
	if v, ok := filter[types.FilterParent]; ok {
		parent, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		parent = types.CanonicalName(parent)
		checks = append(checks, func(cs *types.CardSet) bool { return cs.Parent == parent })
	}
	if v, ok := filter[types.FilterInUse]; ok {
		inUse, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		checks = append(checks, func(cs *types.CardSet) bool { return cs.InUse == inUse })
	}
	return func(cs *types.CardSet) bool {
		for _, check := range checks {
			if !check(cs) {
				return false
			}
		}
		return true
	}, nil
}
