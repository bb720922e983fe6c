package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig selects the storage backend by URL scheme.
type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Migrate bool          `koanf:"migrate"`
}

var supportedSchemes = []string{"postgres://", "postgresql://", "sqlite://", "memory://"}

func (c *DatabaseConfig) String() string {
	return describe("Database",
		"url", MaskURL(c.URL),
		"timeout", c.Timeout,
		"migrate", c.Migrate,
	)
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isSupportedURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://', 'sqlite://' or 'memory://': %s", MaskURL(c.URL))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid database timeout: %v", c.Timeout)
	}
	return nil
}

func isSupportedURL(url string) bool {
	for _, scheme := range supportedSchemes {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}
