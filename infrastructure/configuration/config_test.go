package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Run("search_defaults", func(t *testing.T) {
		c := &Config{}
		initSearch(c)
		assert.Equal(t, 7*24*time.Hour, c.Search.CacheTTL())
		assert.Equal(t, 4, c.Search.UpsertConcurrency)
		assert.Equal(t, 15*time.Second, c.Search.Timeout())
		assert.Equal(t, int64(50), c.Search.MaxResults)
		assert.Equal(t, time.Minute, c.RateLimit.Window())
	})

	t.Run("configured_search_kept", func(t *testing.T) {
		c := &Config{Search: Search{CacheTTLHours: 1, UpsertConcurrency: 2}}
		initSearch(c)
		assert.Equal(t, time.Hour, c.Search.CacheTTL())
		assert.Equal(t, 2, c.Search.UpsertConcurrency)
	})

	t.Run("production_origins", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("ALLOWED_ORIGINS", "")
		c := &Config{}
		initApp(c)
		assert.True(t, c.App.IsProduction())
		assert.Equal(t, []string{"https://idle.fm", "https://www.idle.fm"}, c.App.AllowedOrigins)
		assert.Equal(t, 1, c.App.SystemUserID)
	})

	t.Run("origins_from_env", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
		c := &Config{}
		initApp(c)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.App.AllowedOrigins)
	})

	t.Run("port_from_env", func(t *testing.T) {
		t.Setenv("APP_PORT", "9001")
		c := &Config{}
		initApp(c)
		assert.Equal(t, 9001, c.App.Port)
	})
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("IDLEFM_TEST_VALUE", "")
	assert.Equal(t, "cfg", getConfigValue("cfg", "IDLEFM_TEST_VALUE", "def"))
	assert.Equal(t, "def", getConfigValue("YOUR_API_KEY", "IDLEFM_TEST_VALUE", "def"))

	t.Setenv("IDLEFM_TEST_VALUE", "env")
	assert.Equal(t, "env", getConfigValue("cfg", "IDLEFM_TEST_VALUE", "def"))
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nexport IDLEFM_A=\"one\"\nIDLEFM_B=two\nbroken\nIDLEFM_C=three\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("IDLEFM_C", "kept")
	os.Unsetenv("IDLEFM_A")
	os.Unsetenv("IDLEFM_B")
	t.Cleanup(func() {
		os.Unsetenv("IDLEFM_A")
		os.Unsetenv("IDLEFM_B")
	})

	loaded := LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))
	assert.Equal(t, 2, loaded)
	assert.Equal(t, "one", os.Getenv("IDLEFM_A"))
	assert.Equal(t, "two", os.Getenv("IDLEFM_B"))
	assert.Equal(t, "kept", os.Getenv("IDLEFM_C"))
}
