package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// FindChildren returns every card set whose parent is target, by scanning the
// whole table. The result is ordered by name.
// Returns ErrInvalidArgument when target is nil.
func (s *Service) FindChildren(target *types.CardSet) ([]*types.CardSet, error) {
	if target == nil {
		return nil, types.ErrInvalidArgument
	}
	return findChildren(s.table, target.Name)
}

func findChildren(table types.CardSetTable, name string) ([]*types.CardSet, error) {
	all, err := table.Fetch(nil)
	if err != nil {
		return nil, fmt.Errorf("scanning card sets: %w", err)
	}
	children := []*types.CardSet{}
	for _, cs := range all {
		if cs.Parent == name {
			children = append(children, cs)
		}
	}
	return children, nil
}

// DeleteCardSet deletes the named card set after moving its direct children
// to its own parent, so no subtree is dropped and no child is left pointing at
// a missing record. A card set that is its own parent, or whose parent is
// missing, hands its children up as roots. Both steps commit in one transaction. Loops elsewhere in the table
// are left as they are.
// Returns an error wrapping ErrNotFound when no card set has that name.
func (s *Service) DeleteCardSet(name string) error {
	var moved int
	err := s.table.Atomic(func(tx types.CardSetTable) error {
		target, err := tx.Get(name)
		if err != nil {
			return fmt.Errorf("deleting card set %q: %w", name, err)
		}

		newParent, err := inheritedParent(tx, target)
		if err != nil {
			return err
		}

		children, err := findChildren(tx, target.Name)
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.Name == target.Name {
				continue
			}
			if err := tx.SetParent(child.Name, newParent); err != nil {
				return fmt.Errorf("reparenting %q: %w", child.Name, err)
			}
			moved++
		}

		if err := tx.Delete(target.Name); err != nil {
			return fmt.Errorf("deleting card set %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("card set deleted",
		zap.String("name", name),
		zap.Int("children_reparented", moved))
	return nil
}

// inheritedParent returns the parent the children of target move to.
func inheritedParent(tx types.CardSetTable, target *types.CardSet) (string, error) {
	parent := target.Parent
	if parent == "" || parent == target.Name {
		return "", nil
	}
	if _, err := tx.Get(parent); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("looking up parent %q of %q: %w", parent, target.Name, err)
	}
	return parent, nil
}

// Reparent makes parent the parent of name; an empty parent makes name a
// root. The change is never refused. When it closes a loop the loop's names
// are returned (and logged) so the caller can warn the user; otherwise the
// result is empty.
func (s *Service) Reparent(name, parent string) ([]string, error) {
	if err := s.table.SetParent(name, parent); err != nil {
		return nil, fmt.Errorf("reparenting %q: %w", name, err)
	}

	w, err := walkParents(name, s.table.Get)
	if err != nil {
		return nil, err
	}
	loop := w.loop()
	if len(loop) > 0 {
		s.logger.Warn("reparent created a card set loop",
			zap.String("name", name),
			zap.String("parent", parent),
			zap.Strings("loop", loop))
	} else {
		s.logger.Info("card set reparented",
			zap.String("name", name),
			zap.String("parent", parent))
	}
	return loop, nil
}

// BreakLoop clears the parent of the named card set, making it a root. This
// is the explicit repair for a loop reported by LoopNames or Loops.
func (s *Service) BreakLoop(name string) error {
	if err := s.table.SetParent(name, ""); err != nil {
		return fmt.Errorf("breaking loop at %q: %w", name, err)
	}
	s.logger.Info("card set loop broken", zap.String("name", name))
	return nil
}
