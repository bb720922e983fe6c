package catalog

import "github.com/spf13/cast"

// ValidateProductData checks that m carries every required key and that
// cost and qty are not negative. Field types, id uniqueness and text
// emptiness are not checked.
func ValidateProductData(m Mapping) error {
	for _, key := range RequiredKeys {
		if _, ok := m[key]; !ok {
			return errMissingKeys
		}
	}
	if isNegative(m[KeyCost]) || isNegative(m[KeyQty]) {
		return errNegative
	}
	return nil
}

// isNegative reports whether v reads as a number below zero.
// Values that are not numbers are never negative.
func isNegative(v any) bool {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return false
	}
	return f < 0
}
