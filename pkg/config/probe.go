package config

import (
	"fmt"
	"time"
)

// ProbeConfig configures the client that checks the health of a running catalog over gRPC.
type ProbeConfig struct {
	Addr           string               `koanf:"addr"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// RetryConfig bounds the retries of calls failing with a transient status.
type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

// CircuitBreakerConfig decides when repeated transient failures stop further calls.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ProbeConfig) String() string {
	return describe("Probe",
		"addr", c.Addr,
		"timeout", c.Timeout,
		"retry.maxattempts", c.Retry.MaxAttempts,
		"retry.initialbackoff", c.Retry.InitialBackoff,
		"circuitbreaker.consecutivefailures", c.CircuitBreaker.ConsecutiveFailures,
		"circuitbreaker.errorratepercent", c.CircuitBreaker.ErrorRatePercent,
		"circuitbreaker.opentimeout", c.CircuitBreaker.OpenTimeout,
	)
}

func (c *ProbeConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("gRPC address is not configured")
	}
	if err := requirePositive("gRPC timeout", c.Timeout); err != nil {
		return err
	}
	if c.Retry.MaxAttempts == 0 {
		return fmt.Errorf("retry.maxattempts must be greater than 0")
	}
	if err := requirePositive("retry.initialbackoff", c.Retry.InitialBackoff); err != nil {
		return err
	}
	cb := c.CircuitBreaker
	if cb.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	return requirePositive("circuitbreaker.opentimeout", cb.OpenTimeout)
}
