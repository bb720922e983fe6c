package config

import "fmt"

// LogConfig sets the minimum slog level. An empty level means info.
type LogConfig struct {
	Level string `koanf:"level"`
}

var logLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}

func (c *LogConfig) String() string {
	return describe("Log", "level", c.Level)
}

func (c *LogConfig) Validate() error {
	if !logLevels[c.Level] {
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
	return nil
}
