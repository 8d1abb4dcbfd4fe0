package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func envOf(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"MINDMAZE_DATA_DIR": "/tmp/mm"}))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.True(t, cfg.Audio)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join("/tmp/mm", "mindmaze.log"), cfg.LogFile)
	assert.Equal(t, filepath.Join("/tmp/mm", "store.json"), cfg.ProgressFile())
	assert.Empty(t, cfg.BridgeAddr)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"MINDMAZE_API_URL":      "https://maze.example.com/",
		"MINDMAZE_DATA_DIR":     "/data",
		"MINDMAZE_STORE":        "Postgres",
		"MINDMAZE_DATABASE_URL": "postgres://u@localhost/mm",
		"MINDMAZE_BRIDGE_ADDR":  "127.0.0.1:9090",
		"MINDMAZE_HTTP_TIMEOUT": "750ms",
		"MINDMAZE_AUDIO":        "off",
		"MINDMAZE_LOG_LEVEL":    "debug",
		"MINDMAZE_LOG_FILE":     "/var/log/mm.log",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://maze.example.com", cfg.APIURL)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://u@localhost/mm", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:9090", cfg.BridgeAddr)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTPTimeout)
	assert.False(t, cfg.Audio)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "/var/log/mm.log", cfg.LogFile)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"api url":         {"MINDMAZE_API_URL": "ftp://nope"},
		"store":           {"MINDMAZE_STORE": "redis"},
		"postgres no dsn": {"MINDMAZE_STORE": "postgres"},
		"timeout":         {"MINDMAZE_HTTP_TIMEOUT": "soon"},
		"negative":        {"MINDMAZE_HTTP_TIMEOUT": "-1s"},
		"audio":           {"MINDMAZE_AUDIO": "loud"},
		"log level":       {"MINDMAZE_LOG_LEVEL": "chatty"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			env["MINDMAZE_DATA_DIR"] = "/tmp/mm"
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}

// unsetForTest removes keys for the duration of the test. Values that
// godotenv sets later are rolled back by t.Setenv's cleanup.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_ReadsDotenvWithoutOverridingEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte(
		"MINDMAZE_DATA_DIR="+dir+"\nMINDMAZE_HTTP_TIMEOUT=2s\nMINDMAZE_AUDIO=off\n"), 0o600))
	unsetForTest(t, "MINDMAZE_DATA_DIR", "MINDMAZE_HTTP_TIMEOUT")
	t.Setenv("MINDMAZE_AUDIO", "on")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Audio, "environment wins over dotenv")
}

func TestLoad_MissingDotenvIsFine(t *testing.T) {
	t.Setenv("MINDMAZE_DATA_DIR", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestNewLogger_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{LogFile: filepath.Join(dir, "logs", "mm.log"), LogLevel: zapcore.InfoLevel}

	log, err := cfg.NewLogger()
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
