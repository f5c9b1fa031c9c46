package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Upstream.CacheTTL())
	assert.Equal(t, 8*time.Second, cfg.Upstream.Timeout())
	assert.Equal(t, 1, cfg.Upstream.Retries)
	assert.Equal(t, 200*time.Millisecond, cfg.Upstream.BackoffBase())
	assert.False(t, cfg.Upstream.HasCredential())
	assert.False(t, cfg.Upstream.CoalesceFetches)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 60, cfg.RateLimit.MaxRequests)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UPSTREAM_CACHE_TTL_MS", "1000")
	t.Setenv("UPSTREAM_TIMEOUT_MS", "250")
	t.Setenv("UPSTREAM_RETRIES", "3")
	t.Setenv("EXCHANGE_RATE_API_KEY", "secret-key-123")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Upstream.CacheTTL())
	assert.Equal(t, 250*time.Millisecond, cfg.Upstream.Timeout())
	assert.Equal(t, 3, cfg.Upstream.Retries)
	assert.True(t, cfg.Upstream.HasCredential())
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("UPSTREAM_RETRIES=4\n"), 0o600))
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	t.Chdir(sub)
	t.Cleanup(func() { _ = os.Unsetenv("UPSTREAM_RETRIES") })

	cfg, err := Load(".env.test")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Upstream.Retries)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"UPSTREAM_RETRIES":      "-1",
		"UPSTREAM_CACHE_TTL_MS": "0",
		"CACHE_BACKEND":         "memcached",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_RejectsUnparsableValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UPSTREAM_TIMEOUT_MS", "eight seconds")
	_, err := Load()
	assert.Error(t, err)
}

func TestFindEnvFile_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := FindEnvFile("definitely-missing.env")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", maskValue(""))
	assert.Equal(t, "****", maskValue("abc"))
	assert.Equal(t, "se****-123", maskValue("secret-key-123"))
}
