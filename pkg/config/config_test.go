package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andesco/edgeproxy/pkg/edgeproxy"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edgeproxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("", map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, edgeproxy.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
anthropic_api_key: from-file
upstream_timeout: 5s
port: "9000"
log_requests: false
`)
	cfg, err := LoadFrom(path, map[string]string{
		"ANTHROPIC_API_KEY": " from-env ",
		"PORT":              ":7000",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "7000", cfg.Port)
	assert.False(t, cfg.LogRequests)
	assert.Equal(t, edgeproxy.DefaultAPIVersion, cfg.APIVersion)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{})
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadFrom(writeFile(t, "port: [unclosed"), map[string]string{})
	assert.ErrorContains(t, err, "syntax error in config file")

	_, err = LoadFrom("", map[string]string{"UPSTREAM_TIMEOUT": "soon"})
	assert.ErrorContains(t, err, "parse env")
}

func TestStringRedactsCredential(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "sk-secret"

	s := cfg.String()
	assert.NotContains(t, s, "sk-secret")
	assert.Contains(t, s, "api_key=set")
	assert.Contains(t, Default().String(), "api_key=unset")
}

func TestProxyOptions(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"
	cfg.Timeout = time.Second

	opts := cfg.ProxyOptions()
	assert.Equal(t, "k", opts.APIKey)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, cfg.APIURL, opts.APIURL)
}
