package config

import (
	"fmt"
	"strings"
)

// MetricsConfig exposes the Prometheus scrape endpoint on the HTTP server.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

const defaultMetricsPath = "/metrics"

func (c *MetricsConfig) String() string {
	return describe("Metrics", "enabled", c.Enabled, "path", c.Path)
}

// Validate falls back to /metrics when the path is empty.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Path == "" {
		c.Path = defaultMetricsPath
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %s", c.Path)
	}
	return nil
}
