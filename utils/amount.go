package utils

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Uint256ToString renders an amount as a decimal string, "0" for nil
func Uint256ToString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// Uint256FromString parses a decimal amount. Empty input is zero.
func Uint256FromString(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// ParseAmount parses user input such as "1_000_000". Digit group separators are optional.
func ParseAmount(s string) (*uint256.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if cleaned == "" {
		return nil, fmt.Errorf("amount is required")
	}
	return Uint256FromString(cleaned)
}
