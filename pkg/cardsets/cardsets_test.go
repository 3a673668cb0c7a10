package cardsets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cardsets/pkg/types"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{name: "sqlite", config: types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}},
		{name: "memory", config: types.Config{Backend: types.BackendMemory}},
		{name: "empty backend", config: types.Config{}, wantErr: types.ErrBackendEmpty},
		{name: "unknown backend", config: types.Config{Backend: "dolt"}, wantErr: types.ErrBackendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := Open(tt.config, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer catalog.Detach()

			table, err := catalog.CardSets()
			require.NoError(t, err)
			require.NoError(t, table.Create(&types.CardSet{Name: "Root"}))
		})
	}
}
