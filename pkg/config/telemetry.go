package config

import (
	"fmt"
	"time"
)

// TelemetryConfig configures trace export. Tracing is disabled when no endpoint is set.
type TelemetryConfig struct {
	Traces struct {
		OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
	} `koanf:"traces"`
}

// OtlpHttpConfig points at an OTLP/HTTP trace collector.
type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Enabled reports whether a trace collector endpoint is configured.
func (c *TelemetryConfig) Enabled() bool {
	return c.Traces.OtlpHttp.Endpoint != ""
}

func (c *TelemetryConfig) String() string {
	if !c.Enabled() {
		return describe("Telemetry", "traces", "disabled")
	}
	exp := c.Traces.OtlpHttp
	return describe("Telemetry",
		"traces.otlphttp.endpoint", exp.Endpoint,
		"traces.otlphttp.insecure", exp.Insecure,
		"traces.otlphttp.timeout", exp.Timeout,
	)
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Traces.OtlpHttp.Timeout <= 0 {
		return fmt.Errorf("telemetry timeout must be greater than 0")
	}
	return nil
}
