// This file implements the card_sets table accessor for the SQLite backend.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

var (
	_ types.CardSetTable = (*cardSetsTable)(nil)
	_ types.CardSetTable = (*txTable)(nil)
)

// cardSetsTable is the accessor handed out by Backend.CardSets. Reads run
// directly against the database; every write runs through Atomic so that it
// commits in one transaction and is then persisted to JSONL.
type cardSetsTable struct {
	backend *Backend
}

func (ct *cardSetsTable) read(fn func(tx *txTable) error) error {
	ct.backend.mu.RLock()
	defer ct.backend.mu.RUnlock()

	if !ct.backend.attached {
		return types.ErrCatalogDetached
	}
	return fn(&txTable{q: ct.backend.db})
}

// Get retrieves a card set by name.
func (ct *cardSetsTable) Get(name string) (*types.CardSet, error) {
	var cs *types.CardSet
	err := ct.read(func(tx *txTable) error {
		var err error
		cs, err = tx.Get(name)
		return err
	})
	return cs, err
}

// Fetch queries card sets matching the filter, ordered by name.
func (ct *cardSetsTable) Fetch(filter types.Filter) ([]*types.CardSet, error) {
	var out []*types.CardSet
	err := ct.read(func(tx *txTable) error {
		var err error
		out, err = tx.Fetch(filter)
		return err
	})
	return out, err
}

func (ct *cardSetsTable) Create(cs *types.CardSet) error {
	return ct.Atomic(func(tx types.CardSetTable) error { return tx.Create(cs) })
}

func (ct *cardSetsTable) Update(cs *types.CardSet) error {
	return ct.Atomic(func(tx types.CardSetTable) error { return tx.Update(cs) })
}

func (ct *cardSetsTable) SetParent(name, parent string) error {
	return ct.Atomic(func(tx types.CardSetTable) error { return tx.SetParent(name, parent) })
}

func (ct *cardSetsTable) Rename(oldName, newName string) error {
	return ct.Atomic(func(tx types.CardSetTable) error { return tx.Rename(oldName, newName) })
}

func (ct *cardSetsTable) Delete(name string) error {
	return ct.Atomic(func(tx types.CardSetTable) error { return tx.Delete(name) })
}

// Atomic runs fn inside a SQL transaction. On commit the JSONL file is
// rewritten once; on error the transaction is rolled back and the file is
// left untouched.
func (ct *cardSetsTable) Atomic(fn func(tx types.CardSetTable) error) error {
	b := ct.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrCatalogDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	view := &txTable{q: tx}
	if err := fn(view); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing card sets: %w", err)
	}
	if view.writes == 0 {
		return nil
	}

	if err := persistCardSetsJSONL(b.db, b.jsonlPath()); err != nil {
		return fmt.Errorf("persisting %s: %w", cardSetsFile, err)
	}
	b.logger.Debug("card sets committed", zap.Int("writes", view.writes))
	return nil
}

// txTable runs table operations against a querier, which is either the
// database (reads) or an open transaction (writes).
type txTable struct {
	q      querier
	writes int
}

// Get retrieves a card set by name.
func (tt *txTable) Get(name string) (*types.CardSet, error) {
	name = types.CanonicalName(name)
	row := tt.q.QueryRow("SELECT "+cardSetColumns+" FROM card_sets WHERE name = ?", name)
	cs, err := hydrateCardSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting card set %q: %w", name, err)
	}
	return cs, nil
}

// exists reports whether a card set with the given name is stored.
func (tt *txTable) exists(name string) (bool, error) {
	var one int
	err := tt.q.QueryRow("SELECT 1 FROM card_sets WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking card set %q: %w", name, err)
	}
	return true, nil
}

// mustExist returns ErrNotFound unless the named card set is stored.
func (tt *txTable) mustExist(name string) error {
	ok, err := tt.exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrNotFound
	}
	return nil
}

// Create inserts a new card set, assigning a UUID v7 and timestamps.
func (tt *txTable) Create(cs *types.CardSet) error {
	if cs == nil {
		return types.ErrInvalidData
	}
	if err := cs.Validate(); err != nil {
		return err
	}

	taken, err := tt.exists(cs.Name)
	if err != nil {
		return err
	}
	if taken {
		return types.ErrDuplicateName
	}
	if cs.Parent != "" {
		if err := tt.mustExist(cs.Parent); err != nil {
			return err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating UUID v7: %w", err)
	}
	now := time.Now().UTC()
	cs.CardSetID = id.String()
	cs.CreatedAt = now
	cs.UpdatedAt = now

	rec := toRecord(cs)
	if _, err := tt.q.Exec(
		"INSERT INTO card_sets ("+cardSetColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.CardSetID, rec.Name, rec.Parent, rec.Author, rec.Comment,
		rec.Annotations, boolToInt(rec.InUse), rec.CreatedAt, rec.UpdatedAt,
	); err != nil {
		return fmt.Errorf("inserting card set %q: %w", cs.Name, err)
	}
	tt.writes++
	return nil
}

// Update persists the descriptive fields of an existing card set.
func (tt *txTable) Update(cs *types.CardSet) error {
	if cs == nil {
		return types.ErrInvalidData
	}
	now := time.Now().UTC()
	res, err := tt.q.Exec(
		"UPDATE card_sets SET author = ?, comment = ?, annotations = ?, in_use = ?, updated_at = ? WHERE name = ?",
		cs.Author, cs.Comment, cs.Annotations, boolToInt(cs.InUse), now.Format(timeLayout), types.CanonicalName(cs.Name),
	)
	if err != nil {
		return fmt.Errorf("updating card set %q: %w", cs.Name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	cs.UpdatedAt = now
	tt.writes++
	return nil
}

// SetParent reassigns the parent of name without any loop check.
func (tt *txTable) SetParent(name, parent string) error {
	name, parent = types.CanonicalName(name), types.CanonicalName(parent)
	if err := tt.mustExist(name); err != nil {
		return err
	}
	if parent != "" {
		if err := tt.mustExist(parent); err != nil {
			return err
		}
	}
	if _, err := tt.q.Exec(
		"UPDATE card_sets SET parent = ?, updated_at = ? WHERE name = ?",
		parent, time.Now().UTC().Format(timeLayout), name,
	); err != nil {
		return fmt.Errorf("setting parent of %q: %w", name, err)
	}
	tt.writes++
	return nil
}

// Rename changes a card set's name and repoints its children.
func (tt *txTable) Rename(oldName, newName string) error {
	oldName = types.CanonicalName(oldName)
	if err := tt.mustExist(oldName); err != nil {
		return err
	}
	newName, err := types.NormalizeName(newName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	taken, err := tt.exists(newName)
	if err != nil {
		return err
	}
	if taken {
		return types.ErrDuplicateName
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tt.q.Exec(
		"UPDATE card_sets SET parent = ?, updated_at = ? WHERE parent = ?",
		newName, now, oldName,
	); err != nil {
		return fmt.Errorf("repointing children of %q: %w", oldName, err)
	}
	if _, err := tt.q.Exec(
		"UPDATE card_sets SET name = ?, updated_at = ? WHERE name = ?",
		newName, now, oldName,
	); err != nil {
		return fmt.Errorf("renaming %q: %w", oldName, err)
	}
	tt.writes++
	return nil
}

// Delete removes the card set record only.
func (tt *txTable) Delete(name string) error {
	name = types.CanonicalName(name)
	res, err := tt.q.Exec("DELETE FROM card_sets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting card set %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	tt.writes++
	return nil
}

// Fetch queries card sets matching the filter, ordered by name.
func (tt *txTable) Fetch(filter types.Filter) ([]*types.CardSet, error) {
	query := "SELECT " + cardSetColumns + " FROM card_sets"
	var conditions []string
	var args []any

	if v, ok := filter[types.FilterParent]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "parent = ?")
		args = append(args, types.CanonicalName(s))
	}
	if v, ok := filter[types.FilterInUse]; ok {
		inUse, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "in_use = ?")
		args = append(args, boolToInt(inUse))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	rows, err := tt.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching card sets: %w", err)
	}
	defer rows.Close()

	results := []*types.CardSet{}
	for rows.Next() {
		cs, err := hydrateCardSet(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating card set: %w", err)
		}
		results = append(results, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card sets: %w", err)
	}
	return results, nil
}

// Atomic on a transactional view runs fn in the enclosing transaction.
func (tt *txTable) Atomic(fn func(tx types.CardSetTable) error) error {
	return fn(tt)
}
