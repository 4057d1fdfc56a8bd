// Package core holds the domain types and the pure view pipeline.
//
// This file contains amount parsing and formatting. Amounts are decimal
// currency values with two-decimal display precision; arithmetic is done on
// decimals, never on floats.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an amount. It accepts both dot
// (12.34) and comma (12,34) separators. An empty string parses as zero,
// mirroring the entry form's empty amount field.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// FormatAmount renders an amount with two decimal places for display and
// CSV output, e.g. "85.50".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
