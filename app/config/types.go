package config

import "time"

// Storage drivers.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the top-level configuration, corresponding to inkwell.yml.
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Storage StorageConfig `yaml:"storage" koanf:"storage"`
	Blog    BlogConfig    `yaml:"blog" koanf:"blog"`
	Auth    AuthConfig    `yaml:"auth" koanf:"auth"`
	GitHub  GitHubConfig  `yaml:"github" koanf:"github"`
	Friends FriendsConfig `yaml:"friends" koanf:"friends"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" koanf:"addr"`
	BaseURL         string        `yaml:"base_url" koanf:"base_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" koanf:"cors_origins"`
}

// StorageConfig selects the key-value backend. Path is a directory for
// badger and a file for sqlite; it is ignored for memory.
type StorageConfig struct {
	Driver string `yaml:"driver" koanf:"driver"`
	Path   string `yaml:"path" koanf:"path"`
}

type BlogConfig struct {
	PostsPerPage   int    `yaml:"posts_per_page" koanf:"posts_per_page"`
	MarkdownEngine string `yaml:"markdown_engine" koanf:"markdown_engine"`
	HighlightStyle string `yaml:"highlight_style" koanf:"highlight_style"`
	SearchMode     string `yaml:"search_mode" koanf:"search_mode"`
	SearchLimit    int    `yaml:"search_limit" koanf:"search_limit"`
}

// AuthConfig controls the admin login. SessionSecret signs session cookies.
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret" koanf:"session_secret"`
	MaxAttempts   int           `yaml:"max_attempts" koanf:"max_attempts"`
	Lockout       time.Duration `yaml:"lockout" koanf:"lockout"`
	SessionTTL    time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	RememberTTL   time.Duration `yaml:"remember_ttl" koanf:"remember_ttl"`
	CookieName    string        `yaml:"cookie_name" koanf:"cookie_name"`
	SecureCookie  bool          `yaml:"secure_cookie" koanf:"secure_cookie"`
}

// GitHubConfig points the repository sync at a Jekyll site repository.
type GitHubConfig struct {
	Token    string        `yaml:"token" koanf:"token"`
	Owner    string        `yaml:"owner" koanf:"owner"`
	Repo     string        `yaml:"repo" koanf:"repo"`
	Branch   string        `yaml:"branch" koanf:"branch"`
	APIBase  string        `yaml:"api_base" koanf:"api_base"`
	PostsDir string        `yaml:"posts_dir" koanf:"posts_dir"`
	Timeout  time.Duration `yaml:"timeout" koanf:"timeout"`
}

// Configured reports whether enough is set to talk to GitHub.
func (g GitHubConfig) Configured() bool {
	return g.Token != "" && g.Owner != "" && g.Repo != ""
}

type FriendsConfig struct {
	FeedTimeout     time.Duration `yaml:"feed_timeout" koanf:"feed_timeout"`
	MaxItemsPerFeed int           `yaml:"max_items_per_feed" koanf:"max_items_per_feed"`
	Retry           int           `yaml:"retry" koanf:"retry"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
}
