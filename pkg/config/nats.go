package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig configures event publishing. Publishing is off while Url is empty.
type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// Enabled reports whether a NATS server is configured.
func (c *NATSConfig) Enabled() bool {
	return c.Url != ""
}

func (c *NATSConfig) String() string {
	return describe("NATS", "url", MaskURL(c.Url), "timeout", c.Timeout)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if !strings.HasPrefix(c.Url, "nats://") && !strings.HasPrefix(c.Url, "tls://") {
		return fmt.Errorf("NATS URL must use the nats:// or tls:// scheme")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	return nil
}
