package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SNAPLET_"

// parseEnv applies SNAPLET_* overrides. Empty values are ignored.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	strs := map[string]*string{
		"API_BASE_URL":     &cfg.APIBaseURL,
		"DATA_DIR":         &cfg.DataDir,
		"LOG_LEVEL":        &cfg.LogLevel,
		"LOG_FORMAT":       &cfg.LogFormat,
		"LOG_BACKEND":      &cfg.LogBackend,
		"DEEP_LINK_SCHEME": &cfg.DeepLinkScheme,
		"DEEP_LINK_HOST":   &cfg.DeepLinkHost,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REQUEST_BURST":    &cfg.RequestBurst,
		"FEED_PAGE_SIZE":   &cfg.FeedPageSize,
		"WORKER_POOL_SIZE": &cfg.WorkerPoolSize,
	}
	for name, dst := range ints {
		v, ok := get(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := get("REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", EnvPrefix, err)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := get("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
