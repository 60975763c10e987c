package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/risk"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("SORIVA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BRAVE_API_KEY", "")
	t.Setenv("SERPAPI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 8*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, 2000, cfg.Quota.DailyCalls)
	assert.True(t, cfg.WebFetch.Enabled)
	assert.Empty(t, cfg.ConfiguredProviders())
}

func TestLoadFileAndEnvSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soriva.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
providers:
  grounded_url: "http://llm-gateway:7000"
  timeout: 3s
quota:
  daily_calls: 500
webfetch:
  enabled: false
  max_content_chars: 1500
`), 0o600))

	t.Setenv("SORIVA_CONFIG", path)
	t.Setenv("BRAVE_API_KEY", "bk-123")
	t.Setenv("SERPAPI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "tk-456")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://llm-gateway:7000", cfg.Providers.GroundedURL)
	assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, 500, cfg.Quota.DailyCalls)
	assert.False(t, cfg.WebFetch.Enabled)
	assert.Equal(t, 1500, cfg.WebFetch.MaxContentChars)
	assert.Equal(t, "bk-123", cfg.Providers.BraveAPIKey)
	assert.ElementsMatch(t, []string{"brave", "tavily"}, cfg.ConfiguredProviders())
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soriva.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  timeout: -1s\n"), 0o600))
	t.Setenv("SORIVA_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "providers.timeout")
}

const keywordYAML = `
categories:
  health:
    - dosage
    - bukhar
  finance:
    - loan
`

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(keywordYAML), 0o600))

	sets, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dosage", "bukhar"}, sets[risk.CategoryHealth])
	assert.Equal(t, []string{"loan"}, sets[risk.CategoryFinance])
}

func TestLoadKeywordsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: {}\n"), 0o600))
	_, err := LoadKeywords(path)
	assert.Error(t, err)
}

func TestWatchKeywordsReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(keywordYAML), 0o600))

	reloaded := make(chan map[risk.Category][]string, 4)
	stop, err := WatchKeywords(path, zap.NewNop(), func(sets map[risk.Category][]string) {
		reloaded <- sets
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("categories:\n  legal:\n    - bail\n"), 0o600))

	select {
	case sets := <-reloaded:
		assert.Equal(t, []string{"bail"}, sets[risk.CategoryLegal])
	case <-time.After(3 * time.Second):
		t.Fatal("keyword reload never fired")
	}
}
