package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`[€$£¥₴₽₹₺₩₪]|CHF|EUR|USD|UAH|GBP|\s|\x{00A0}`)

// NormalizeAmount strips currency markers and grouping so that the result can
// be handed to decimal.NewFromString. Both "1.234,56" and "1,234.56" become
// "1234.56"; a lone comma with at most two trailing digits is a decimal comma.
func NormalizeAmount(s string) string {
	s = symbolPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// ParseAmount parses a human formatted amount. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(NormalizeAmount(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", s, err)
	}
	return amount, nil
}
