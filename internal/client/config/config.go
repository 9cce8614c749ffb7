package config

import "time"

// DefaultBaseURL is the local-development gateway used when nothing else is
// configured.
const DefaultBaseURL = "http://localhost:8080"

// Config holds runtime settings for the quzhan CLI.
//
// Fields:
//   - BaseURL: the single gateway URL every backend call goes through.
//   - RequestTimeout: fixed client-side timeout of each outbound call.
//   - LoginPath: where the redirect policy sends the user on fatal auth errors.
//   - Platform: value of the X-Platform header.
//   - DatabasePath: SQLite file holding the token and the persisted session.
//   - LogLevel, LogFormat: logger selection ("text" uses slog, "json" uses zap).
//   - PageSize: default page size for feeds and searches.
//   - BasicUsername, BasicPassword: optional HTTP basic credentials used when
//     no access token is held.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	LoginPath      string
	Platform       string
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	PageSize       int
	BasicUsername  string
	BasicPassword  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = DefaultBaseURL
	c.RequestTimeout = 10 * time.Second
	c.LoginPath = "/login"
	c.Platform = "web"
	c.DatabasePath = "quzhan.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PageSize = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a JSON file (if given) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
