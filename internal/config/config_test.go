package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_DefaultsWhenNothingConfigured(t *testing.T) {
	cfg, err := Loader{
		ReadFile:  func(string) ([]byte, error) { return nil, os.ErrNotExist },
		LookupEnv: envMap(nil),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Session.Driver)
	assert.Equal(t, "enroll_sid", cfg.Session.CookieName)
	assert.True(t, cfg.SecureCookies())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enrollment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  cookieSecure: false
graphql:
  endpoint: https://api.example.com/graphql
  timeout: 3s
session:
  driver: redis
  ttl: 30m
  redisDB: 2
ratelimit:
  rps: 5
log:
  format: text
urls:
  booking: https://book.example.com
`), 0o600))

	cfg, err := Loader{
		Path: path,
		LookupEnv: envMap(map[string]string{
			"ENROLL_SERVER_ADDR":     ":9100",
			"ENROLL_SESSION_TTL":     "45m",
			"ENROLL_RATELIMIT_BURST": "20",
			"ENROLL_URLS_MARKETING":  "https://www.example.com",
			"ENROLL_LOG_LEVEL":       "  ",
		}),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.False(t, cfg.SecureCookies())
	assert.Equal(t, "https://api.example.com/graphql", cfg.GraphQL.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.GraphQL.Timeout)
	assert.Equal(t, DriverRedis, cfg.Session.Driver)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2, cfg.Session.RedisDB)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://book.example.com", cfg.URLs.Booking)
	assert.Equal(t, "https://www.example.com", cfg.URLs.Marketing)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Loader{Path: filepath.Join(t.TempDir(), "missing.yaml"), LookupEnv: envMap(nil)}.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ENROLL_GRAPHQL_ENDPOINT=https://dotenv.example.com/graphql\n"), 0o600))
	t.Setenv("ENROLL_GRAPHQL_ENDPOINT", "")
	require.NoError(t, os.Unsetenv("ENROLL_GRAPHQL_ENDPOINT"))

	cfg, err := Loader{
		EnvFile:  envFile,
		ReadFile: func(string) ([]byte, error) { return nil, os.ErrNotExist },
	}.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com/graphql", cfg.GraphQL.Endpoint)
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"ENROLL_SESSION_TTL":          "soon",
		"ENROLL_SERVER_COOKIE_SECURE": "maybe",
		"ENROLL_SESSION_REDIS_DB":     "one",
		"ENROLL_RATELIMIT_RPS":        "fast",
		"ENROLL_RATELIMIT_BURST":      "many",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := ApplyEnvOverrides(&cfg, envMap(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Session.Driver = "disk"
	assert.ErrorContains(t, cfg.Validate(), "unknown session driver")

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "unknown log format")

	cfg = Default()
	cfg.Session.Driver = DriverRedis
	cfg.Session.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "redisAddr")

	assert.NoError(t, Default().Validate())
}
