package config

import (
	"fmt"
	"time"
)

// HTTPTimeouts are the http.Server timeouts of the catalog API.
type HTTPTimeouts struct {
	Read       time.Duration `koanf:"read"`
	Write      time.Duration `koanf:"write"`
	Idle       time.Duration `koanf:"idle"`
	ReadHeader time.Duration `koanf:"readHeader"`
}

type HTTPConfig struct {
	Port           int          `koanf:"port"`
	MaxHeaderBytes int          `koanf:"maxHeaderBytes"`
	Timeout        HTTPTimeouts `koanf:"timeout"`
}

// Addr is the listen address of the server.
func (c *HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) String() string {
	return describe("HTTP Server",
		"port", c.Port,
		"maxHeaderBytes", c.MaxHeaderBytes,
		"timeout.read", c.Timeout.Read,
		"timeout.write", c.Timeout.Write,
		"timeout.idle", c.Timeout.Idle,
		"timeout.readHeader", c.Timeout.ReadHeader,
	)
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"HTTP server read timeout", c.Timeout.Read},
		{"HTTP server write timeout", c.Timeout.Write},
		{"HTTP server idle timeout", c.Timeout.Idle},
		{"HTTP server read header timeout", c.Timeout.ReadHeader},
	}
	for _, t := range timeouts {
		if err := requirePositive(t.name, t.d); err != nil {
			return err
		}
	}
	return nil
}
