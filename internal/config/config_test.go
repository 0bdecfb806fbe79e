package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "docsync.db", cfg.DB.Path)
	require.Equal(t, "data", cfg.Store.Root)
	require.Equal(t, 20, cfg.Backup.MaxPerFile)
	require.True(t, cfg.Watch.Enabled)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCSYNC_SERVER_PORT", "9090")
	t.Setenv("DOCSYNC_STORE_ROOT", "/srv/docs")
	t.Setenv("DOCSYNC_BACKUP_MAX_PER_FILE", "5")
	t.Setenv("DOCSYNC_WATCH_ENABLED", "false")
	t.Setenv("DOCSYNC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/srv/docs", cfg.Store.Root)
	require.Equal(t, 5, cfg.Backup.MaxPerFile)
	require.False(t, cfg.Watch.Enabled)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DOCSYNC_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 7070
backup:
  max_per_file: 3
  max_age: 72h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DOCSYNC_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 3, cfg.Backup.MaxPerFile)
	require.Equal(t, "72h", cfg.Backup.MaxAge)

	// Environment still wins over the file.
	t.Setenv("DOCSYNC_SERVER_PORT", "7071")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 7071, cfg.Server.Port)
}

func TestBackupConfig_Policy(t *testing.T) {
	policy, err := BackupConfig{MaxPerFile: 10, MaxAge: "24h"}.Policy()
	require.NoError(t, err)
	require.Equal(t, 10, policy.MaxPerFile)
	require.Equal(t, 24*time.Hour, policy.MaxAge)

	policy, err = BackupConfig{MaxPerFile: 10}.Policy()
	require.NoError(t, err)
	require.Zero(t, policy.MaxAge)

	_, err = BackupConfig{MaxAge: "soon"}.Policy()
	require.Error(t, err)
}
