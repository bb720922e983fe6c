package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every error produced while checking caller input.
	ErrValidation = errors.New("validation failed")
	// ErrMissingKey is matched by a KeyError.
	ErrMissingKey = errors.New("missing key")
	// ErrConflict is matched by storage errors caused by an id that is already taken.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports input rejected before any storage call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KeyError reports a key absent from a product mapping.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("missing key %q", e.Key)
}

func (e *KeyError) Unwrap() error {
	return ErrMissingKey
}

var (
	errMissingKeys = &ValidationError{Msg: "Product data must contain keys: " + keySet(RequiredKeys)}
	errNegative    = &ValidationError{Msg: "Cost and quantity must be non-negative."}
	errNegativeQty = &ValidationError{Msg: "Quantity cannot be negative."}
)

// keySet renders keys as {'a', 'b'}.
func keySet(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
