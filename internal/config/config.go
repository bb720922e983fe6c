// Package config holds the configuration of the catalog service.
package config

import (
	"strings"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Defaults are the values used when neither config.yaml nor the environment set them.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxHeaderBytes":     1 << 20,
		"server.timeout.read":       5 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       120 * time.Second,
		"server.timeout.readHeader": 2 * time.Second,
		"database.url":              "memory://",
		"database.timeout":          10 * time.Second,
		"grpc.enabled":              true,
		"grpc.port":                 "9090",
		"log.level":                 "info",
		"pprof.addr":                "localhost:6060",
		"metrics.enabled":           true,
		"metrics.path":              "/metrics",
		"shutdown.timeout":          15 * time.Second,
		"nats.timeout":              5 * time.Second,
		"auth.mininterval":          5 * time.Minute,
	}
}

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Metrics    config.MetricsConfig    `koanf:"metrics"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Auth       config.IdP              `koanf:"auth"`
}

type section interface {
	String() string
	Validate() error
}

func (c *Config) sections() []section {
	return []section{
		&c.HTTPServer,
		&c.Database,
		&c.GRPC,
		&c.Log,
		&c.PProf,
		&c.Metrics,
		&c.Telemetry,
		&c.NATS,
		&c.Auth,
		&c.Shutdown,
	}
}

// String returns a string representation of the configuration with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	for _, s := range c.sections() {
		b.WriteString(s.String())
	}
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	for _, s := range c.sections() {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StorageOnly is a configuration for commands that only talk to the database,
// such as the CLI product commands and migrate.
type StorageOnly struct {
	Database config.DatabaseConfig `koanf:"database"`
	Log      config.LogConfig      `koanf:"log"`
}

func (c *StorageOnly) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
