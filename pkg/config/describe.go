package config

import (
	"fmt"
	"strings"
	"time"
)

// describe renders a section of the startup configuration dump,
// one "key: value" line per pair.
func describe(title string, pairs ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "  %v: %v\n", pairs[i], pairs[i+1])
	}
	return b.String()
}

// requirePositive fails with "invalid <what>: <d>" unless d > 0.
func requirePositive(what string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid %s: %v", what, d)
	}
	return nil
}
