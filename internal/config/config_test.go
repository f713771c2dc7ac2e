package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/sheets"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visitsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "14:30", cfg.Import.DefaultTime)
	assert.Equal(t, reconcile.KeepBoth, cfg.Import.CrossPartition)
	assert.Equal(t, 10, cfg.Backups.Max)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
db:
  path: /data/kbv.db
backups:
  max: 3
import:
  default_time: "15:00"
  cross_partition: archived-wins
sheets:
  sheet_id: abc
  tabs:
    - name: MAIU 2026
      gid: "1817293373"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/kbv.db", cfg.DB.Path)
	assert.Equal(t, 3, cfg.Backups.Max)
	assert.Equal(t, "15:00", cfg.Import.DefaultTime)
	assert.Equal(t, reconcile.ArchivedWins, cfg.Import.CrossPartition)
	assert.Equal(t, []sheets.Tab{{Name: "MAIU 2026", GID: "1817293373"}}, cfg.Sheets.Tabs)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their default")
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "db:\n  path: file.db\n")
	t.Setenv("VISITSYNC_DB", "env.db")
	t.Setenv("VISITSYNC_BACKUPS_MAX", "5")
	t.Setenv("VISITSYNC_CROSS_PARTITION", "archived-wins")
	t.Setenv("VISITSYNC_REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB.Path)
	assert.Equal(t, 5, cfg.Backups.Max)
	assert.Equal(t, reconcile.ArchivedWins, cfg.Import.CrossPartition)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown key", body: "colour: blue\n", wantErr: "failed to parse YAML"},
		{name: "bad policy", body: "import:\n  cross_partition: newest\n", wantErr: "import.cross_partition"},
		{name: "bad store", body: "store: postgres\n", wantErr: "store must be"},
		{name: "zero backups", body: "backups:\n  max: 0\n", wantErr: "backups.max"},
		{name: "tab without gid", body: "sheets:\n  tabs:\n    - name: x\n", wantErr: "sheets.tabs[0]"},
		{name: "bad env int", env: map[string]string{"VISITSYNC_BACKUPS_MAX": "ten"}, wantErr: "VISITSYNC_BACKUPS_MAX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
