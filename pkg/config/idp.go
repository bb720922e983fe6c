package config

import (
	"fmt"
	"time"
)

// IdP configures bearer token verification of catalog writes.
// Verification is off while JwksURL is empty.
type IdP struct {
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	MinInterval time.Duration `koanf:"mininterval"`
}

// Enabled reports whether writes must carry a verified token.
func (c *IdP) Enabled() bool {
	return c.JwksURL != ""
}

func (c *IdP) String() string {
	if !c.Enabled() {
		return describe("Auth", "writes", "unauthenticated")
	}
	return describe("Auth",
		"jwksurl", c.JwksURL,
		"issuer", c.Issuer,
		"clientid", c.ClientID,
		"mininterval", c.MinInterval,
	)
}

func (c *IdP) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP issuer cannot be empty")
	}
	if c.ClientID == "" {
		return fmt.Errorf("IdP client ID cannot be empty")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP minimum interval must be greater than zero")
	}
	return nil
}
