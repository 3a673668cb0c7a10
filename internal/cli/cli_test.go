package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// testEnv isolates one CLI session in temporary config and data directories.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"CARDSETS_CONFIG_DIR", "CARDSETS_DATA_DIR", "CARDSETS_BACKEND", "CARDSETS_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.NoError(e.t, r.err, "cardsets %v\nstderr: %s", args, r.stderr)
	return r
}

// seed builds Root -> Child -> Card Set 0..3.
func (e *testEnv) seed() {
	e.t.Helper()
	e.mustRun("init")
	e.mustRun("create", "Root")
	e.mustRun("create", "Child", "--parent", "Root")
	for _, name := range []string{"Card Set 0", "Card Set 1", "Card Set 2", "Card Set 3"} {
		e.mustRun("create", name, "--parent", "Child")
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("version")
	assert.Contains(t, r.stdout, "cardsets v")
	assert.Contains(t, r.stdout, modulePath)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("init")
	assert.Contains(t, r.stdout, env.dataDir)

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, env.dataDir, cfg.DataDir)

	_, err = os.Stat(filepath.Join(env.dataDir, "card_sets.jsonl"))
	assert.NoError(t, err)

	// A second init keeps the existing config.
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt), []byte("backend: sqlite\nlog_level: error\n"), 0o644))
	env.mustRun("init")
	data, err = os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: error")
}

func TestCreateShowAndList(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	r := env.mustRun("create", "  <Deck>  ", "--parent", "Root", "--author", "ana", "--in-use", "--json")
	var created cardSetJSON
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &created))
	assert.Equal(t, "(Deck)", created.Name)
	assert.Equal(t, "ana", created.Author)
	assert.True(t, created.InUse)
	assert.NotEmpty(t, created.CardSetID)

	r = env.mustRun("show", "Card Set 2")
	assert.Contains(t, r.stdout, "Parent:      Child")
	assert.Contains(t, r.stdout, "Path:        Root > Child > Card Set 2")

	r = env.mustRun("list")
	assert.Equal(t, "(Deck)\nCard Set 0\nCard Set 1\nCard Set 2\nCard Set 3\nChild\nRoot\n", r.stdout)

	r = env.mustRun("list", "--parent", "")
	assert.Equal(t, "Root\n", r.stdout)

	r = env.mustRun("list", "--in-use", "--json")
	var inUse []cardSetJSON
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &inUse))
	require.Len(t, inUse, 1)
	assert.Equal(t, "(Deck)", inUse[0].Name)

	r = env.mustRun("children", "Root")
	assert.Equal(t, "(Deck)\nChild\n", r.stdout)
}

func TestUserErrors(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	tests := []struct {
		name string
		args []string
	}{
		{name: "duplicate name", args: []string{"create", "Root"}},
		{name: "missing parent", args: []string{"create", "New", "--parent", "Ghost"}},
		{name: "blank name", args: []string{"create", "   "}},
		{name: "show missing", args: []string{"show", "Ghost"}},
		{name: "delete missing", args: []string{"delete", "Ghost"}},
		{name: "rename onto existing", args: []string{"rename", "Child", "Root"}},
		{name: "wrong argument count", args: []string{"show"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run(tt.args...)
			require.Error(t, r.err)
			assert.Equal(t, exitUserError, exitCode(r.err))
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	env.mustRun("update", "Child", "--comment", "starter decks", "--in-use")
	r := env.mustRun("show", "Child", "--json")
	var got cardSetJSON
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, "starter decks", got.Comment)
	assert.True(t, got.InUse)
	assert.Equal(t, "Root", got.Parent)

	env.mustRun("update", "Child", "--in-use=false")
	r = env.mustRun("show", "Child", "--json")
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.False(t, got.InUse)
	assert.Equal(t, "starter decks", got.Comment, "unchanged flags keep their values")
}

func TestNamesMatchAsTyped(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	env.mustRun("create", "<A>", "--parent", "Root")

	r := env.mustRun("show", "<A>")
	assert.Contains(t, r.stdout, "Name:        (A)")

	env.mustRun("create", "Leaf", "--parent", "<A>")
	r = env.mustRun("reparent", "Card Set 1", "<A>")
	assert.Equal(t, "Card Set 1 moved under (A)\n", r.stdout)
	r = env.mustRun("children", "<A>")
	assert.Equal(t, "Card Set 1\nLeaf\n", r.stdout)

	r = env.mustRun("rename", "<A>", " <B> ")
	assert.Equal(t, "Renamed card set: (A) -> (B)\n", r.stdout)

	r = env.mustRun("delete", "<B>")
	assert.Equal(t, "Deleted card set: (B)\n", r.stdout)
	r = env.mustRun("children", "Root")
	assert.Equal(t, "Card Set 1\nChild\nLeaf\n", r.stdout)
}

func TestDeleteReparentsChildren(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	env.mustRun("delete", "Child")
	r := env.mustRun("children", "Root")
	assert.Equal(t, "Card Set 0\nCard Set 1\nCard Set 2\nCard Set 3\n", r.stdout)

	env.mustRun("delete", "Card Set 0")
	r = env.mustRun("children", "Root")
	assert.Equal(t, "Card Set 1\nCard Set 2\nCard Set 3\n", r.stdout)
}

func TestRenameRepointsChildren(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	env.mustRun("rename", "Child", "Branch")
	r := env.mustRun("children", "Branch")
	assert.Equal(t, "Card Set 0\nCard Set 1\nCard Set 2\nCard Set 3\n", r.stdout)
}

func TestLoopWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	r := env.mustRun("check", "Card Set 1")
	assert.Contains(t, r.stdout, "No loop reached")

	r = env.mustRun("reparent", "Root", "Card Set 0")
	assert.Contains(t, r.stderr, "warning: card sets now form a loop: ")
	for _, name := range []string{"Root", "Card Set 0", "Child"} {
		assert.Contains(t, r.stderr, name)
	}

	r = env.run("check", "Card Set 1")
	require.Error(t, r.err)
	assert.Equal(t, exitUserError, exitCode(r.err))
	assert.ElementsMatch(t, []string{"Root", "Card Set 0", "Child"}, loopNames(r.err))

	r = env.mustRun("loops")
	assert.Equal(t, "Card Set 0 -> Child -> Root -> Card Set 0\n", r.stdout)

	r = env.mustRun("tree")
	assert.Equal(t,
		"loop: Card Set 0 -> Child -> Root -> Card Set 0\n"+
			"Card Set 0 *\n"+
			"  Root *\n"+
			"    Child *\n"+
			"      Card Set 1\n"+
			"      Card Set 2\n"+
			"      Card Set 3\n",
		r.stdout)

	r = env.mustRun("show", "Card Set 3")
	assert.Contains(t, r.stdout, "Loop:")

	env.mustRun("break-loop", "Root")
	r = env.mustRun("loops", "--json")
	var loops [][]string
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &loops))
	assert.Empty(t, loops)

	r = env.mustRun("check", "Card Set 1", "--json")
	var check checkJSON
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &check))
	assert.False(t, check.Looped)
}

func TestTreeJSON(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	env.mustRun("create", "Spare", "--in-use")

	r := env.mustRun("tree", "--json")
	var got forestJSON
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))

	leaf := func(name string) nodeJSON { return nodeJSON{Name: name, Children: []nodeJSON{}} }
	want := forestJSON{
		Roots: []nodeJSON{
			{Name: "Root", Children: []nodeJSON{
				{Name: "Child", Children: []nodeJSON{
					leaf("Card Set 0"), leaf("Card Set 1"), leaf("Card Set 2"), leaf("Card Set 3"),
				}},
			}},
			{Name: "Spare", InUse: true, Children: []nodeJSON{}},
		},
		Loops: []loopJSON{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree --json mismatch (-want +got):\n%s", diff)
	}
}

func TestDataPersistsAcrossInvocations(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	data, err := os.ReadFile(filepath.Join(env.dataDir, "card_sets.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 6, bytes.Count(data, []byte("\n")))
}

func TestMemoryBackendRejected(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	t.Setenv("CARDSETS_BACKEND", "memory")

	r := env.run("create", "Root")
	require.ErrorIs(t, r.err, errMemoryBackend)
	assert.Equal(t, exitUserError, exitCode(r.err))
}

func TestUnknownBackend(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt), []byte("backend: postgres\n"), 0o644))

	r := env.run("list")
	require.Error(t, r.err)
	assert.Equal(t, exitUserError, exitCode(r.err))
}

// syncRecorder is a log sink that remembers whether it was flushed.
type syncRecorder struct {
	bytes.Buffer
	synced int
}

func (s *syncRecorder) Sync() error {
	s.synced++
	return nil
}

func TestRunFlushesLogger(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	for _, tc := range []struct {
		name string
		args []string
		code int
	}{
		{"success", []string{"list"}, exitSuccess},
		{"user error", []string{"show", "Missing"}, exitUserError},
		{"usage error", []string{"show"}, exitUserError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sink := &syncRecorder{}
			a := newApp()
			a.newLogger = func(string, bool) (*zap.Logger, error) {
				enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
				return zap.New(zapcore.NewCore(enc, sink, zapcore.DebugLevel)), nil
			}

			var stdout, stderr bytes.Buffer
			args := append([]string{"--config-dir", env.configDir, "--data-dir", env.dataDir}, tc.args...)
			code := a.run(args, &stdout, &stderr)

			assert.Equal(t, tc.code, code, "stderr: %s", stderr.String())
			if tc.code != exitSuccess {
				assert.Contains(t, stderr.String(), "cardsets: ")
			}
			// Usage errors fail before setup swaps in the configured logger.
			if tc.name != "usage error" {
				assert.Equal(t, 1, sink.synced)
			}
		})
	}
}
