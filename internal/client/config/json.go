package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/snaplet/snaplet/internal/flagx"
	"github.com/snaplet/snaplet/internal/timex"
)

// jsonConfig is the on-disk shape. Absent fields keep their current value.
type jsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	DataDir           *string         `json:"data_dir"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	RequestBurst      *int            `json:"request_burst"`
	FeedPageSize      *int            `json:"feed_page_size"`
	WorkerPoolSize    *int            `json:"worker_pool_size"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	LogBackend        *string         `json:"log_backend"`
	DeepLinkScheme    *string         `json:"deep_link_scheme"`
	DeepLinkHost      *string         `json:"deep_link_host"`
}

// parseJSON overlays cfg with the file given by -c or -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path, err := flagx.ConfigPath(args)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.DataDir, jc.DataDir)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	set(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	set(&cfg.RequestBurst, jc.RequestBurst)
	set(&cfg.FeedPageSize, jc.FeedPageSize)
	set(&cfg.WorkerPoolSize, jc.WorkerPoolSize)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogBackend, jc.LogBackend)
	set(&cfg.DeepLinkScheme, jc.DeepLinkScheme)
	set(&cfg.DeepLinkHost, jc.DeepLinkHost)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
