package config

import (
	"fmt"
	"strconv"
)

// GrpcServerConfig configures the gRPC listener serving the health service.
type GrpcServerConfig struct {
	Enabled           bool   `koanf:"enabled"`
	Port              string `koanf:"port"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) String() string {
	return describe("gRPC Server",
		"enabled", c.Enabled,
		"port", c.Port,
		"reflection", c.ReflectionEnabled,
	)
}

func (c *GrpcServerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Port == "" {
		return fmt.Errorf("gRPC port is not configured")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid gRPC server port: %s", c.Port)
	}
	return nil
}
