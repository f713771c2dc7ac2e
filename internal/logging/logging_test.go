package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "WARN"})
	require.NoError(t, err)

	cl := Component(l, "store")
	cl.Info().Msg("hidden")
	cl.Warn().Str("path", "kbv.db").Msg("slow save")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "kbv.db", entry["path"])
	assert.Equal(t, "slow save", entry["message"])
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "error", Verbose: true, Console: true})
	require.NoError(t, err)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "DBG")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}
