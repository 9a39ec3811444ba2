package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AllMonths selects the whole document instead of a single month bucket.
const AllMonths = "all"

// Sums are the signed running totals over the amount column.
// NetSum always equals PositiveSum + NegativeSum.
type Sums struct {
	PositiveSum decimal.Decimal `json:"positiveSum"`
	NegativeSum decimal.Decimal `json:"negativeSum"`
	NetSum      decimal.Decimal `json:"netSum"`
}

// MarshalJSON writes the sums as JSON numbers.
func (s Sums) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PositiveSum json.Number `json:"positiveSum"`
		NegativeSum json.Number `json:"negativeSum"`
		NetSum      json.Number `json:"netSum"`
	}{
		PositiveSum: json.Number(s.PositiveSum.String()),
		NegativeSum: json.Number(s.NegativeSum.String()),
		NetSum:      json.Number(s.NetSum.String()),
	})
}

// Add accumulates one amount. Zero touches only NetSum, which it leaves unchanged.
func (s *Sums) Add(v decimal.Decimal) {
	switch v.Sign() {
	case 1:
		s.PositiveSum = s.PositiveSum.Add(v)
	case -1:
		s.NegativeSum = s.NegativeSum.Add(v)
	}
	s.NetSum = s.NetSum.Add(v)
}

// MonthBucket groups the rows dated within one calendar month.
type MonthBucket struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Rows  []Row      `json:"rows"`
	Sums
}

// Before orders buckets chronologically by (year, month).
func (b MonthBucket) Before(other MonthBucket) bool {
	if b.Year != other.Year {
		return b.Year < other.Year
	}
	return b.Month < other.Month
}

// CategorySummary is the count and signed total of rows in one category.
type CategorySummary struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// MarshalJSON writes Total as a JSON number.
func (c CategorySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category string      `json:"category"`
		Count    int         `json:"count"`
		Total    json.Number `json:"total"`
	}{c.Category, c.Count, json.Number(c.Total.String())})
}
