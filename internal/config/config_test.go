package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEARNFUL_DATA_DIR", dir)
	for _, k := range []string{"DATABASE_URL", "JWT_SECRET", "LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"LEARNFUL_REMOTE_DSN", "LEARNFUL_SESSION_SECRET"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// godotenv reads .env from the working directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")
	assert.Equal(t, filepath.Join("/data", "learnful.db"), cfg.Local.Path)
	assert.False(t, cfg.Remote.Configured())
	assert.Equal(t, 100, cfg.Timer.DefaultEfficiency)
	assert.Equal(t, 3*time.Second, cfg.Remote.ReadTimeout)
	assert.NoError(t, validateConfig(&cfg))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "learnful.db"), cfg.Local.Path)
	assert.Equal(t, "postgres", cfg.Remote.Driver)
	assert.False(t, cfg.Remote.Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LEARNFUL_REMOTE_DSN", "postgres://localhost/learnful")
	t.Setenv("LEARNFUL_SESSION_SECRET", "s3cret")
	t.Setenv("LEARNFUL_REMOTE_READ_TIMEOUT", "750ms")
	t.Setenv("LEARNFUL_TIMER_DEFAULT_EFFICIENCY", "80")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Remote.Configured())
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, 750*time.Millisecond, cfg.Remote.ReadTimeout)
	assert.Equal(t, 80, cfg.Timer.DefaultEfficiency)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "logger:\n  level: debug\n  format: json\nmetrics:\n  textfile: /tmp/learnful.prom\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "/tmp/learnful.prom", cfg.Metrics.Textfile)
}

func TestLoad_RemoteRequiresSecret(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/learnful")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session secret")
}

func TestValidateConfig_Rejects(t *testing.T) {
	base := DefaultConfig("/data")

	bad := base
	bad.Remote.Driver = "mysql"
	assert.Error(t, validateConfig(&bad))

	bad = base
	bad.Logger.Format = "xml"
	assert.Error(t, validateConfig(&bad))

	bad = base
	bad.Timer.DefaultEfficiency = 120
	assert.Error(t, validateConfig(&bad))
}
