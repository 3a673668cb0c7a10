package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/cardsets/internal/storetest"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

func attachWithJSONL(t *testing.T, lines ...string) (types.CardSetTable, *observer.ObservedLogs) {
	t.Helper()
	dir := t.TempDir()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, cardSetsFile), []byte(content), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	b := NewBackend(WithLogger(zap.New(core)))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })

	table, err := b.CardSets()
	require.NoError(t, err)
	return table, logs
}

const (
	rootLine  = `{"card_set_id":"01900000-0000-7000-8000-000000000001","name":"Root","parent":"","author":"","comment":"","annotations":"","in_use":false,"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`
	childLine = `{"card_set_id":"01900000-0000-7000-8000-000000000002","name":"Child","parent":"Root","author":"","comment":"","annotations":"","in_use":true,"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`
)

func TestLoadJSONLRecords(t *testing.T) {
	table, logs := attachWithJSONL(t, rootLine, childLine)

	all, err := table.Fetch(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Child", "Root"}, storetest.Names(all))

	child, err := table.Get("Child")
	require.NoError(t, err)
	assert.Equal(t, "Root", child.Parent)
	assert.True(t, child.InUse)
	assert.Zero(t, logs.Len())
}

func TestLoadJSONLUnknownFieldsIgnored(t *testing.T) {
	line := `{"card_set_id":"01900000-0000-7000-8000-000000000003","name":"Future","parent":"","created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z","colour":"red","tags":["a"]}`
	table, logs := attachWithJSONL(t, line)

	got, err := table.Get("Future")
	require.NoError(t, err)
	assert.Empty(t, got.Author, "missing known fields default to zero values")
	assert.Zero(t, logs.Len())
}

func TestLoadJSONLSkipsBadRecords(t *testing.T) {
	duplicate := strings.Replace(childLine, "000000000002", "000000000009", 1)
	noName := `{"card_set_id":"01900000-0000-7000-8000-000000000004","created_at":"2026-01-02T03:04:05Z"}`
	badTime := `{"card_set_id":"01900000-0000-7000-8000-000000000005","name":"Bad","created_at":"yesterday"}`
	wrongType := `{"card_set_id":"01900000-0000-7000-8000-000000000006","name":42}`

	table, logs := attachWithJSONL(t, rootLine, childLine, duplicate, noName, badTime, wrongType, "{truncated")

	all, err := table.Fetch(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Child", "Root"}, storetest.Names(all))
	assert.Equal(t, 4, logs.Len(), "each skipped record except the malformed line is logged")
}

func TestLoadJSONLMissingUpdatedAtFallsBack(t *testing.T) {
	line := `{"card_set_id":"01900000-0000-7000-8000-000000000007","name":"Old","created_at":"2026-01-02T03:04:05Z"}`
	table, _ := attachWithJSONL(t, line)

	got, err := table.Get("Old")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}
