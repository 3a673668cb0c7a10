// Package storetest holds a conformance suite that every CardSetTable
// implementation runs from its own tests.
package storetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// Factory returns an empty, attached card-set table. Cleanup is the
// factory's responsibility (t.Cleanup).
type Factory func(t *testing.T) types.CardSetTable

// Names returns the names of sets in order.
func Names(sets []*types.CardSet) []string {
	out := make([]string, len(sets))
	for i, cs := range sets {
		out[i] = cs.Name
	}
	return out
}

// MustCreate creates a card set with the given parent and fails the test on error.
func MustCreate(t *testing.T, table types.CardSetTable, name, parent string) *types.CardSet {
	t.Helper()
	cs := &types.CardSet{Name: name, Parent: parent}
	require.NoError(t, table.Create(cs))
	return cs
}

// Run executes the conformance suite against tables produced by newTable.
func Run(t *testing.T, newTable Factory) {
	t.Run("create assigns id and timestamps", func(t *testing.T) {
		table := newTable(t)
		cs := &types.CardSet{Name: "Root", Author: "author", Comment: "comment", Annotations: "notes", InUse: true}
		require.NoError(t, table.Create(cs))
		assert.NotEmpty(t, cs.CardSetID)
		assert.False(t, cs.CreatedAt.IsZero())

		got, err := table.Get("Root")
		require.NoError(t, err)
		assert.Equal(t, cs.CardSetID, got.CardSetID)
		assert.Equal(t, "author", got.Author)
		assert.Equal(t, "comment", got.Comment)
		assert.Equal(t, "notes", got.Annotations)
		assert.True(t, got.InUse)
		assert.True(t, got.IsRoot())
	})

	t.Run("create normalizes names", func(t *testing.T) {
		table := newTable(t)
		cs := &types.CardSet{Name: " Deck <1> "}
		require.NoError(t, table.Create(cs))
		assert.Equal(t, "Deck (1)", cs.Name)
		_, err := table.Get("Deck (1)")
		require.NoError(t, err)
	})

	t.Run("lookups accept names as typed at creation", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "<A>", "")
		MustCreate(t, table, "B", "")

		got, err := table.Get(" <A> ")
		require.NoError(t, err)
		assert.Equal(t, "(A)", got.Name)

		require.NoError(t, table.SetParent("B", "<A>"))
		children, err := table.Fetch(types.Filter{types.FilterParent: "<A>"})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, Names(children))

		got.Comment = "typed"
		got.Name = "<A>"
		require.NoError(t, table.Update(got))
		got, err = table.Get("(A)")
		require.NoError(t, err)
		assert.Equal(t, "typed", got.Comment)

		require.NoError(t, table.Rename("<A>", "<C>"))
		b, err := table.Get("B")
		require.NoError(t, err)
		assert.Equal(t, "(C)", b.Parent)

		require.NoError(t, table.SetParent("B", ""))
		require.NoError(t, table.Delete("<C>"))
		_, err = table.Get("(C)")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("create rejects bad input", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")

		tests := []struct {
			name    string
			cs      *types.CardSet
			wantErr error
		}{
			{name: "duplicate", cs: &types.CardSet{Name: "Root"}, wantErr: types.ErrDuplicateName},
			{name: "empty", cs: &types.CardSet{Name: ""}, wantErr: types.ErrInvalidName},
			{name: "unknown parent", cs: &types.CardSet{Name: "Child", Parent: "Ghost"}, wantErr: types.ErrNotFound},
			{name: "nil", cs: nil, wantErr: types.ErrInvalidData},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.ErrorIs(t, table.Create(tt.cs), tt.wantErr)
			})
		}
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		table := newTable(t)
		_, err := table.Get("Missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("update changes descriptive fields only", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")
		MustCreate(t, table, "Child", "Root")

		require.NoError(t, table.Update(&types.CardSet{Name: "Child", Author: "new", InUse: true, Parent: ""}))
		got, err := table.Get("Child")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Author)
		assert.True(t, got.InUse)
		assert.Equal(t, "Root", got.Parent)

		assert.ErrorIs(t, table.Update(&types.CardSet{Name: "Missing"}), types.ErrNotFound)
	})

	t.Run("set parent allows self and loops", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "A", "")
		MustCreate(t, table, "B", "A")

		require.NoError(t, table.SetParent("A", "B"))
		a, err := table.Get("A")
		require.NoError(t, err)
		assert.Equal(t, "B", a.Parent)

		require.NoError(t, table.SetParent("B", "B"))
		b, err := table.Get("B")
		require.NoError(t, err)
		assert.Equal(t, "B", b.Parent)

		require.NoError(t, table.SetParent("A", ""))
		assert.ErrorIs(t, table.SetParent("A", "Ghost"), types.ErrNotFound)
		assert.ErrorIs(t, table.SetParent("Ghost", "A"), types.ErrNotFound)
	})

	t.Run("rename repoints children", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")
		MustCreate(t, table, "Child", "Root")
		MustCreate(t, table, "Other", "")

		require.NoError(t, table.Rename("Root", "Trunk"))
		child, err := table.Get("Child")
		require.NoError(t, err)
		assert.Equal(t, "Trunk", child.Parent)
		_, err = table.Get("Root")
		assert.ErrorIs(t, err, types.ErrNotFound)

		require.NoError(t, table.Rename("Trunk", "Trunk"))
		assert.ErrorIs(t, table.Rename("Trunk", "Other"), types.ErrDuplicateName)
		assert.ErrorIs(t, table.Rename("Trunk", ""), types.ErrInvalidName)
		assert.ErrorIs(t, table.Rename("Ghost", "New"), types.ErrNotFound)
	})

	t.Run("delete removes only the record", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")
		MustCreate(t, table, "Child", "Root")

		require.NoError(t, table.Delete("Root"))
		_, err := table.Get("Root")
		assert.ErrorIs(t, err, types.ErrNotFound)
		child, err := table.Get("Child")
		require.NoError(t, err)
		assert.Equal(t, "Root", child.Parent)

		assert.ErrorIs(t, table.Delete("Root"), types.ErrNotFound)
	})

	t.Run("fetch orders by name and filters", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")
		MustCreate(t, table, "Sib", "")
		MustCreate(t, table, "Child 2", "Root")
		MustCreate(t, table, "Child 1", "Root")
		require.NoError(t, table.Update(&types.CardSet{Name: "Sib", InUse: true}))

		all, err := table.Fetch(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Child 1", "Child 2", "Root", "Sib"}, Names(all))

		children, err := table.Fetch(types.Filter{types.FilterParent: "Root"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Child 1", "Child 2"}, Names(children))

		roots, err := table.Fetch(types.Filter{types.FilterParent: ""})
		require.NoError(t, err)
		assert.Equal(t, []string{"Root", "Sib"}, Names(roots))

		inUse, err := table.Fetch(types.Filter{types.FilterInUse: true, types.FilterParent: ""})
		require.NoError(t, err)
		assert.Equal(t, []string{"Sib"}, Names(inUse))

		_, err = table.Fetch(types.Filter{types.FilterInUse: "yes"})
		assert.ErrorIs(t, err, types.ErrInvalidFilter)

		empty := newTable(t)
		none, err := empty.Fetch(nil)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("atomic commits all or nothing", func(t *testing.T) {
		table := newTable(t)
		MustCreate(t, table, "Root", "")
		MustCreate(t, table, "Child", "Root")

		boom := errors.New("boom")
		err := table.Atomic(func(tx types.CardSetTable) error {
			if err := tx.SetParent("Child", ""); err != nil {
				return err
			}
			if err := tx.Delete("Root"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		child, err := table.Get("Child")
		require.NoError(t, err)
		assert.Equal(t, "Root", child.Parent)
		_, err = table.Get("Root")
		require.NoError(t, err)

		require.NoError(t, table.Atomic(func(tx types.CardSetTable) error {
			if err := tx.SetParent("Child", ""); err != nil {
				return err
			}
			return tx.Atomic(func(inner types.CardSetTable) error {
				return inner.Delete("Root")
			})
		}))
		_, err = table.Get("Root")
		assert.ErrorIs(t, err, types.ErrNotFound)
		child, err = table.Get("Child")
		require.NoError(t, err)
		assert.True(t, child.IsRoot())
	})
}
