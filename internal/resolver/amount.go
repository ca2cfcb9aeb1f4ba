package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySuffix = regexp.MustCompile(`(?i)\s*(PLN|ZŁ|ZL|EUR|USD|CZK)\.?\s*$`)

// ParseAmount parses supplier price notation into a decimal.
// Handles "12.99", "12,99", "1.299,00", "1 299,00 zł".
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	cleaned = currencySuffix.ReplaceAllString(cleaned, "")
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '€', '$':
			return -1
		}
		return r
	}, cleaned)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("no numeric value in %q", value)
	}

	// The separator appearing last is the decimal separator
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", value)
	}
	return d, nil
}

// ParseQuantity parses a stock quantity; fractions are truncated and
// negative values clamp to zero
func ParseQuantity(value string) (int, error) {
	d, err := ParseAmount(value)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, nil
	}
	return int(d.IntPart()), nil
}
