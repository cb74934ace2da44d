package config

import "time"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: DriverBadger,
			Path:   "data/badger",
		},
		Blog: BlogConfig{
			PostsPerPage:   5,
			MarkdownEngine: "legacy",
			HighlightStyle: "github",
			SearchMode:     "fuzzy",
			SearchLimit:    10,
		},
		Auth: AuthConfig{
			MaxAttempts: 5,
			Lockout:     15 * time.Minute,
			SessionTTL:  24 * time.Hour,
			RememberTTL: 30 * 24 * time.Hour,
			CookieName:  "inkwell_session",
		},
		GitHub: GitHubConfig{
			Branch:   "main",
			APIBase:  "https://api.github.com",
			PostsDir: "_posts",
			Timeout:  30 * time.Second,
		},
		Friends: FriendsConfig{
			FeedTimeout:     10 * time.Second,
			MaxItemsPerFeed: 5,
			Retry:           1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
