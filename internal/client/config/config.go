package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the snaplet shell.
type Config struct {
	APIBaseURL        string
	DataDir           string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	RequestBurst      int
	FeedPageSize      int
	WorkerPoolSize    int
	LogLevel          string
	LogFormat         string
	LogBackend        string
	DeepLinkScheme    string
	DeepLinkHost      string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:3000/api/v1/"
	c.DataDir = defaultDataDir()
	c.RequestTimeout = 10 * time.Second
	c.RequestsPerSecond = 10
	c.RequestBurst = 5
	c.FeedPageSize = 10
	c.WorkerPoolSize = 4
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = "slog"
	c.DeepLinkScheme = "snaplet"
	c.DeepLinkHost = "snaplet.app"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "snaplet")
	}
	return ".snaplet"
}

// LoadConfig builds a Config from defaults, the JSON file named in args,
// the environment and finally the flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
