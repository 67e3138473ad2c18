package config

import (
	"flag"
	"io"

	"github.com/snaplet/snaplet/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns in args. Other flags are
// filtered out so the shell and the JSON loader can share the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-d", "-t", "-r", "-p", "-w", "-v"})

	fs := flag.NewFlagSet("snaplet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "requests per second")
	fs.IntVar(&cfg.FeedPageSize, "p", cfg.FeedPageSize, "feed page size")
	fs.IntVar(&cfg.WorkerPoolSize, "w", cfg.WorkerPoolSize, "worker pool size")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
