package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the cardsets binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "cardsets-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}
	cardsetsBin = filepath.Join(tmpDir, "cardsets")

	cmd := exec.Command("go", "build", "-o", cardsetsBin, "./cmd/cardsets")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func seed(env *TestEnv) {
	env.MustRun("init")
	env.MustRun("create", "Root")
	env.MustRun("create", "Child", "--parent", "Root")
	for _, name := range []string{"Card Set 0", "Card Set 1", "Card Set 2", "Card Set 3"} {
		env.MustRun("create", name, "--parent", "Child")
	}
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)
	seed(env)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "success", args: []string{"list"}, code: 0},
		{name: "not found", args: []string{"show", "Ghost"}, code: 1},
		{name: "duplicate", args: []string{"create", "Root"}, code: 1},
		{name: "unknown command", args: []string{"frobnicate"}, code: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.Run(tt.args...)
			assert.Equal(t, tt.code, result.ExitCode, "stderr: %s", result.Stderr)
		})
	}

	t.Run("unreadable data dir", func(t *testing.T) {
		blocker := filepath.Join(env.TempDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		result := env.RunRaw(env.TempDir, "--config-dir", env.Config, "--data-dir", filepath.Join(blocker, "data"), "list")
		assert.Equal(t, 2, result.ExitCode, "stderr: %s", result.Stderr)
	})
}

func TestLoopLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	seed(env)

	result := env.MustRun("reparent", "Root", "Card Set 0")
	assert.Contains(t, result.Stderr, "form a loop")

	result = env.Run("check", "Card Set 2")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "card sets form a loop")

	// Deleting a loop member keeps the loop closed.
	env.MustRun("delete", "Card Set 0")
	result = env.MustRun("loops")
	assert.Equal(t, "Child -> Root -> Child\n", result.Stdout)

	env.MustRun("break-loop", "Root")
	result = env.MustRun("loops")
	assert.Empty(t, result.Stdout)
	assert.Equal(t, 0, env.Run("check", "Card Set 2").ExitCode)
}

func TestHandEditedJSONLIsReloaded(t *testing.T) {
	env := NewTestEnv(t)
	seed(env)

	path := filepath.Join(env.DataDir, "card_sets.jsonl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Keep only Root and Child, plus one line nobody can parse.
	var kept []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.Contains(line, `"name":"Root"`) || strings.Contains(line, `"name":"Child"`) {
			kept = append(kept, line)
		}
	}
	require.Len(t, kept, 2)
	kept = append(kept, "{not json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0o644))

	result := env.MustRun("list", "--json")
	sets := ParseJSON[[]CardSet](t, result.Stdout)
	require.Len(t, sets, 2)
	assert.Equal(t, "Child", sets[0].Name)
	assert.Equal(t, "Root", sets[0].Parent)
}

func TestDirectoryPrecedence(t *testing.T) {
	env := NewTestEnv(t)
	work := filepath.Join(env.TempDir, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))

	t.Run("CWD defaults", func(t *testing.T) {
		result := env.RunRaw(work, "init")
		require.Equal(t, 0, result.ExitCode, result.Stderr)
		assert.FileExists(t, filepath.Join(work, ".cardsets", "config.yaml"))
		assert.FileExists(t, filepath.Join(work, ".cardsets-db", "card_sets.jsonl"))
	})

	t.Run("env overrides", func(t *testing.T) {
		configDir := filepath.Join(env.TempDir, "env-config")
		dataDir := filepath.Join(env.TempDir, "env-data")
		env.Env = []string{"CARDSETS_CONFIG_DIR=" + configDir, "CARDSETS_DATA_DIR=" + dataDir}
		t.Cleanup(func() { env.Env = nil })

		result := env.RunRaw(work, "init")
		require.Equal(t, 0, result.ExitCode, result.Stderr)
		assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
		assert.FileExists(t, filepath.Join(dataDir, "card_sets.jsonl"))
	})

	t.Run("config.yaml data_dir beats env", func(t *testing.T) {
		configDir := filepath.Join(env.TempDir, "pinned-config")
		pinned := filepath.Join(env.TempDir, "pinned-data")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"),
			[]byte("backend: sqlite\ndata_dir: "+pinned+"\n"), 0o644))
		env.Env = []string{"CARDSETS_DATA_DIR=" + filepath.Join(env.TempDir, "ignored")}
		t.Cleanup(func() { env.Env = nil })

		result := env.RunRaw(work, "--config-dir", configDir, "create", "Pinned")
		require.Equal(t, 0, result.ExitCode, result.Stderr)
		data, err := os.ReadFile(filepath.Join(pinned, "card_sets.jsonl"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"name":"Pinned"`)
		assert.NoDirExists(t, filepath.Join(env.TempDir, "ignored"))
	})
}
