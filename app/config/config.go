package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"inkwell/app/logging"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: INKWELL_SERVER__ADDR sets server.addr.
const EnvPrefix = "INKWELL_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var (
	validDrivers     = map[string]bool{DriverBadger: true, DriverSQLite: true, DriverMemory: true}
	validEngines     = map[string]bool{"legacy": true, "commonmark": true}
	validSearchModes = map[string]bool{"fuzzy": true, "linear": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server.base_url %q: must be an absolute URL", c.Server.BaseURL)
	}

	if !validDrivers[c.Storage.Driver] {
		return fmt.Errorf("invalid storage.driver %q: must be one of badger, sqlite, memory", c.Storage.Driver)
	}
	if c.Storage.Driver != DriverMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver)
	}

	if c.Blog.PostsPerPage < 1 {
		return fmt.Errorf("blog.posts_per_page must be at least 1")
	}
	if !validEngines[c.Blog.MarkdownEngine] {
		return fmt.Errorf("invalid blog.markdown_engine %q: must be legacy or commonmark", c.Blog.MarkdownEngine)
	}
	if !validSearchModes[c.Blog.SearchMode] {
		return fmt.Errorf("invalid blog.search_mode %q: must be fuzzy or linear", c.Blog.SearchMode)
	}
	if c.Blog.SearchLimit < 0 {
		return fmt.Errorf("blog.search_limit must be non-negative")
	}

	if c.Auth.MaxAttempts < 1 {
		return fmt.Errorf("auth.max_attempts must be at least 1")
	}
	if c.Auth.Lockout <= 0 || c.Auth.SessionTTL <= 0 || c.Auth.RememberTTL <= 0 {
		return fmt.Errorf("auth durations must be positive")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}

	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		return fmt.Errorf("github.owner and github.repo must be set together")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}
