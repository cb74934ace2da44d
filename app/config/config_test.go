package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Blog.PostsPerPage)
	assert.Equal(t, "legacy", cfg.Blog.MarkdownEngine)
	assert.Equal(t, 5, cfg.Auth.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.Lockout)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RememberTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yml")

	original := DefaultConfig()
	original.Storage.Driver = DriverSQLite
	original.Storage.Path = "data/blog.db"
	original.Blog.PostsPerPage = 8
	original.Auth.Lockout = 5 * time.Minute
	original.GitHub.Owner = "alice"
	original.GitHub.Repo = "alice.github.io"
	original.Server.CORSOrigins = []string{"https://a.example", "https://b.example"}

	require.NoError(t, original.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yml")
	yml := "server:\n  addr: \":9000\"\nblog:\n  search_mode: linear\nauth:\n  lockout: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("INKWELL_SERVER__BASE_URL", "https://blog.example")
	t.Setenv("INKWELL_BLOG__POSTS_PER_PAGE", "12")
	t.Setenv("INKWELL_GITHUB__TOKEN", "tok")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "https://blog.example", cfg.Server.BaseURL)
	assert.Equal(t, "linear", cfg.Blog.SearchMode)
	assert.Equal(t, 12, cfg.Blog.PostsPerPage)
	assert.Equal(t, 30*time.Minute, cfg.Auth.Lockout)
	assert.Equal(t, "tok", cfg.GitHub.Token)
	assert.Equal(t, "_posts", cfg.GitHub.PostsDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/blog" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"missing path", func(c *Config) { c.Storage.Path = "" }},
		{"zero page size", func(c *Config) { c.Blog.PostsPerPage = 0 }},
		{"unknown engine", func(c *Config) { c.Blog.MarkdownEngine = "asciidoc" }},
		{"unknown search mode", func(c *Config) { c.Blog.SearchMode = "vector" }},
		{"no attempts", func(c *Config) { c.Auth.MaxAttempts = 0 }},
		{"zero lockout", func(c *Config) { c.Auth.Lockout = 0 }},
		{"owner without repo", func(c *Config) { c.GitHub.Owner = "alice" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("memory needs no path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Storage.Driver = DriverMemory
		cfg.Storage.Path = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestGitHubConfigured(t *testing.T) {
	g := DefaultConfig().GitHub
	assert.False(t, g.Configured())
	g.Token, g.Owner, g.Repo = "t", "o", "r"
	assert.True(t, g.Configured())
}
