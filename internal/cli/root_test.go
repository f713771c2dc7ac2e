package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/testutil"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "visitsync", cmd.Use)
	assert.Contains(t, cmd.Long, "without creating duplicates")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"validate"}, {"merge"}, {"import"}, {"export"}, {"status"}, {"duplicates"},
		{"speakers", "merge"}, {"speakers", "delete"},
		{"hosts", "rename"}, {"hosts", "merge"}, {"hosts", "delete"},
		{"visits", "complete"}, {"visits", "log"}, {"visits", "dedupe-archive"},
		{"talks", "add"}, {"talks", "delete"},
		{"sheet", "sync"},
		{"backup", "list"}, {"backup", "create"}, {"backup", "restore"},
		{"history"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(filepath.Join(path...), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestMergeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	mergeCmd, _, err := cmd.Find([]string{"merge"})
	require.NoError(t, err)

	outputFlag := mergeCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := newCLI(t).run("--format", "yaml", "status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, Reported(err))
}

// cliHarness runs commands against one temporary database.
type cliHarness struct {
	t    *testing.T
	dir  string
	db   string
	opts *RootOptions
}

func newCLI(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	clock := testutil.NewDeterministicClock()
	return &cliHarness{
		t:   t,
		dir: dir,
		db:  filepath.Join(dir, "visitsync.db"),
		opts: &RootOptions{
			Now: clock.Now,
			IDs: ids.NewSequence("gen"),
		},
	}
}

// run executes one command line and returns its stdout.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCommand(h.opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", h.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "visitsync %v\n%s", args, out)
	return out
}

func (h *cliHarness) writeFile(name, body string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
