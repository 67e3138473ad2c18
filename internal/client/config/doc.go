// Package config loads runtime configuration for the snaplet shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. SNAPLET_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string     API base URL
//	-d string     data directory (local database, key file, captures)
//	-t duration   per-request timeout
//	-r float      requests per second towards the API
//	-p int        feed page size
//	-w int        worker pool size
//	-v string     log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:3000/api/v1/",
//	  "data_dir": "/home/me/.config/snaplet",
//	  "request_timeout": "10s",
//	  "requests_per_second": 10,
//	  "request_burst": 5,
//	  "feed_page_size": 10,
//	  "worker_pool_size": 4,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_backend": "slog",
//	  "deep_link_scheme": "snaplet",
//	  "deep_link_host": "snaplet.app"
//	}
package config
