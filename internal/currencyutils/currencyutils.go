// Package currencyutils renders signed sums for presentation. It is the single
// place that decides how signs, zeros and currency symbols are displayed.
package currencyutils

import (
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatOptions controls how a value is rendered.
type FormatOptions struct {
	Decimals         int
	ShowPositiveSign bool
	ShowNegativeSign bool
	// ShowZero renders zero as a number; otherwise zero renders as "".
	ShowZero       bool
	CurrencySymbol string
	// Locale is a BCP 47 tag such as "en" or "uk-UA".
	Locale string
}

// DefaultFormatOptions renders two decimals, negative signs and zeros in
// English without a currency symbol.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Decimals:         2,
		ShowNegativeSign: true,
		ShowZero:         true,
		Locale:           "en",
	}
}

// FormattedSums is a Sums triple rendered as strings.
type FormattedSums struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
	Net      string `json:"net"`
}

func tagFor(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}

func symbolFirst(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "en"
}

// formatMagnitude renders |v| with locale grouping and exactly decimals
// fraction digits, and reports the sign of the rounded value.
func formatMagnitude(v decimal.Decimal, opts FormatOptions) (string, int) {
	decimals := opts.Decimals
	if decimals < 0 {
		decimals = 0
	}
	rounded := v.Round(int32(decimals))
	printer := message.NewPrinter(tagFor(opts.Locale))
	text := printer.Sprint(number.Decimal(rounded.Abs().InexactFloat64(),
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals)))
	return text, rounded.Sign()
}

func signPrefix(sign int, opts FormatOptions) string {
	switch {
	case sign > 0 && opts.ShowPositiveSign:
		return "+"
	case sign < 0 && opts.ShowNegativeSign:
		return "-"
	default:
		return ""
	}
}

// FormatNumber renders v without a currency symbol.
func FormatNumber(v decimal.Decimal, opts FormatOptions) string {
	text, sign := formatMagnitude(v, opts)
	if sign == 0 && !opts.ShowZero {
		return ""
	}
	return signPrefix(sign, opts) + text
}

// FormatCurrency renders v with opts.CurrencySymbol. English locales put the
// symbol before the digits ("-$1,234.50"), others after ("-1 234,50 ₴").
func FormatCurrency(v decimal.Decimal, opts FormatOptions) string {
	text, sign := formatMagnitude(v, opts)
	if sign == 0 && !opts.ShowZero {
		return ""
	}
	symbol := strings.TrimSpace(opts.CurrencySymbol)
	prefix := signPrefix(sign, opts)
	switch {
	case symbol == "":
		return prefix + text
	case symbolFirst(tagFor(opts.Locale)):
		return prefix + symbol + text
	default:
		return prefix + text + " " + symbol
	}
}

// FormatSums renders a Sums triple. The negative sum keeps its sign whenever
// ShowNegativeSign is set, and the net sum follows the same rules as any value.
func FormatSums(s models.Sums, opts FormatOptions) FormattedSums {
	return FormattedSums{
		Positive: FormatCurrency(s.PositiveSum, opts),
		Negative: FormatCurrency(s.NegativeSum, opts),
		Net:      FormatCurrency(s.NetSum, opts),
	}
}

// SymbolForCode returns the narrow symbol for an ISO 4217 code ("EUR" -> "€").
// Unknown codes are returned upper-cased.
func SymbolForCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return message.NewPrinter(language.English).Sprint(currency.NarrowSymbol(unit))
}
