package config

import (
	"fmt"
	"net"
)

// PProfConfig controls the optional net/http/pprof listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	if !c.Enabled {
		return describe("PProf", "enabled", false)
	}
	return describe("PProf", "enabled", true, "addr", c.Addr)
}

// Validate requires a host:port address when pprof is enabled.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	if _, port, err := net.SplitHostPort(c.Addr); err != nil || port == "" {
		return fmt.Errorf("invalid pprof address %q: expected host:port", c.Addr)
	}
	return nil
}
