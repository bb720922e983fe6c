package config

import (
	"fmt"
	"time"
)

// maxShutdownTimeout bounds how long serve waits for in-flight requests.
const maxShutdownTimeout = 5 * time.Minute

// ShutdownConfig is the grace period given to the servers and exporters on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return describe("Shutdown", "timeout", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	if c.Timeout > maxShutdownTimeout {
		return fmt.Errorf("shutdown timeout %s exceeds %s", c.Timeout, maxShutdownTimeout)
	}
	return nil
}
