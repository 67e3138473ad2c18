// Package mockapi is a development stand-in for the snaplet backend. It
// serves the same JSON envelope API the client talks to, backed by
// in-memory fixtures.
package mockapi

import (
	"flag"
	"io"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/snaplet/snaplet/internal/flagx"
)

// Config holds runtime settings for the mock backend.
//
// Fields:
//   - Addr: bind address for the HTTP listener.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenTTL: lifetime of issued access tokens.
//   - BcryptCost: cost used when hashing the fixture passwords.
//   - Latency: artificial delay added to every API response.
//   - LogLevel, LogFormat, LogBackend: logging.Options for the server log.
type Config struct {
	Addr           string
	SecretKey      string
	AccessTokenTTL time.Duration
	BcryptCost     int
	Latency        time.Duration
	LogLevel       string
	LogFormat      string
	LogBackend     string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:3000"
	c.SecretKey = "snaplet-dev-secret"
	c.AccessTokenTTL = 15 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.Latency = 0
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogBackend = "zap"
}

// LoadConfig applies defaults and then command-line flags from args.
//
// Supported flags:
//
//	-a string     listen address
//	-s string     JWT secret
//	-t duration   access token lifetime
//	-l duration   artificial response latency
//	-v string     log level
//	-f string     log format (text or json)
//	-b string     log backend (slog or zap)
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-l", "-v", "-f", "-b"})

	fs := flag.NewFlagSet("snaplet-mock", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to listen on")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "JWT secret key")
	fs.DurationVar(&cfg.AccessTokenTTL, "t", cfg.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&cfg.Latency, "l", cfg.Latency, "artificial response latency")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
