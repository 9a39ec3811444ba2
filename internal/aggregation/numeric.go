package aggregation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the longest numeric prefix, the way a lenient float
// parser reads "12.5 EUR" as 12.5.
var leadingNumber = regexp.MustCompile(`^\s*[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// ExtractNumericValue coerces a cell into a number. Empty cells and anything
// without a numeric prefix are 0; it never fails.
func ExtractNumericValue(v models.Value) float64 {
	f, _ := Decimal(v).Float64()
	return f
}

// Decimal is ExtractNumericValue without the float64 round trip. Text cells
// are parsed exactly.
func Decimal(v models.Value) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case decimal.Decimal:
		return x
	case string:
		return fromText(x)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func fromText(s string) decimal.Decimal {
	m := leadingNumber.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	m = strings.TrimPrefix(strings.TrimSpace(m), "+")
	d, err := decimal.NewFromString(m)
	if err != nil {
		f, ferr := strconv.ParseFloat(m, 64)
		if ferr != nil {
			return decimal.Zero
		}
		return fromFloat(f)
	}
	return d
}
