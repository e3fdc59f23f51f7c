package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// clearEnv blanks the overrides applyEnv reads so the host environment
// cannot leak into file-based assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "DEBUG", "APP_ENV", "LOG_LEVEL", "LOG_DIR", "STORAGE_DRIVER", "MONGODB_URL", "DB_NAME",
		"DATABASE_DSN", "REDIS_URL", "SECRET_KEY", "ACCESS_TOKEN_EXPIRE_MINUTES", "LLM_PROVIDER",
		"GROK_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: 9000
env: Production
api_prefix: /api/v2/
log:
  level: DEBUG
storage:
  driver: sqlite
  dsn: "file::memory:"
rate_limit:
  requests_per_minute: 10
allowed_origins: [" example.com ", ""]
trusted_proxies: ["10.0.0.0/8 ", ""]
llm:
  provider: Gemini
  timeout: 15s
  stub_delay: 0s
  gemini:
    api_key: g-key
    model: gemini-pro
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "file::memory:", cfg.Storage.DSN)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, time.Duration(0), cfg.LLM.StubDelay)
	assert.True(t, cfg.LLM.Gemini.Configured())
	assert.False(t, cfg.LLM.Grok.Configured())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "port: 9000\nnot_a_field: true\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadValidation(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"port":    "port: 70000\n",
		"driver":  "storage:\n  driver: cassandra\n",
		"dsn":     "storage:\n  driver: mysql\n",
		"timeout": "llm:\n  timeout: soon\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, DriverMongo, cfg.Storage.Driver)
	assert.Equal(t, defaultDatabaseName, cfg.Storage.Database)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROK_API_KEY", "xai-test")
	t.Setenv("MONGODB_URL", "mongodb://db:27017")
	t.Setenv("DB_NAME", "chats")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")

	cfg, err := Load(writeConfig(t, "storage:\n  mongo_url: mongodb://file:27017\n"))
	require.NoError(t, err)
	assert.Equal(t, "xai-test", cfg.LLM.Grok.APIKey)
	assert.Equal(t, "mongodb://db:27017", cfg.Storage.MongoURL)
	assert.Equal(t, "chats", cfg.Storage.Database)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenTTL())
}

func TestApplyEnvIgnoresBlank(t *testing.T) {
	cfg := Default()
	env := map[string]string{"GEMINI_API_KEY": "   ", "PORT": "8080"}
	err := applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
	assert.Equal(t, 8080, cfg.Port)

	env["PORT"] = "eighty"
	require.Error(t, applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
}
