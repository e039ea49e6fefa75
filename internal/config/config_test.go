package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so that no stray tracker.yaml or .env is read.
func chdir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TRACKER_STORAGE_URL", "PORT", "ALLOWED_ORIGIN", "TRACKER_BACKUP_DIR",
		"TRACKER_BACKUP_SCHEDULE", "TRACKER_NOTICE_TTL", "TRACKER_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sqlite://tracker.db", cfg.Storage.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Notices.TTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := chdir(t)
	clearEnv(t)

	doc := `
storage:
  url: memory://
server:
  port: "9000"
  allowed_origin: https://app.example.com
backup:
  dir: /var/backups/tracker
notices:
  ttl: 5s
logging:
  debug: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte(doc), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory://", cfg.Storage.URL)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "https://app.example.com", cfg.Server.AllowedOrigin)
	assert.Equal(t, "/var/backups/tracker", cfg.Backup.Dir)
	assert.Equal(t, "0 */6 * * *", cfg.Backup.Schedule)
	assert.Equal(t, 5*time.Second, cfg.Notices.TTL)
	assert.True(t, cfg.Logging.Debug)

	t.Setenv("TRACKER_STORAGE_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", "3000")
	t.Setenv("TRACKER_NOTICE_TTL", "750ms")
	t.Setenv("TRACKER_DEBUG", "false")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Storage.URL)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Notices.TTL)
	assert.False(t, cfg.Logging.Debug)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		chdir(t)
		clearEnv(t)
		_, err := Load("missing.yaml")
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := chdir(t)
		clearEnv(t)
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("bad ttl", func(t *testing.T) {
		chdir(t)
		clearEnv(t)
		t.Setenv("TRACKER_NOTICE_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "TRACKER_NOTICE_TTL")
	})

	t.Run("bad debug flag", func(t *testing.T) {
		chdir(t)
		clearEnv(t)
		t.Setenv("TRACKER_DEBUG", "maybe")
		_, err := Load("")
		assert.ErrorContains(t, err, "TRACKER_DEBUG")
	})
}
