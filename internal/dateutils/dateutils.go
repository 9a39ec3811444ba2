// Package dateutils parses the date cells found in bank exports and renders
// month labels for aggregation.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Layouts shared across the application.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutUS       = "01/02/2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
	MonthKeyLayout     = "2006-01"
)

// timestampPattern matches the "DD.MM.YYYY HH:MM:SS" form most bank exports
// use. It is tried before anything else.
var timestampPattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})\s+(\d{2}):(\d{2}):(\d{2})$`)

var whitespace = regexp.MustCompile(`\s+`)

// GenericFormats are tried, in order, when the timestamp pattern does not match.
var GenericFormats = []string{
	DateLayoutISO,
	time.RFC3339,
	time.RFC3339Nano,
	DateLayoutFull,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DateLayoutEuropean,
	"02.01.2006 15:04",
	"2.1.2006",
	"02/01/2006",
	DateLayoutUS,
	"02-01-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// Excel serial numbers accepted as dates: 1900-01-01 .. 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseTimestamp applies the DD.MM.YYYY HH:MM:SS strategy. Field values are
// range-checked so "31.02.2024 00:00:00" is rejected rather than rolled over.
func ParseTimestamp(s string) (time.Time, bool) {
	m := timestampPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}

	parts := make([]int, 6)
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}
	day, month, year, hour, minute, second := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	if month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateString tries the timestamp strategy and then GenericFormats.
func ParseDateString(s string) (time.Time, error) {
	clean := CleanDateString(s)
	if clean == "" {
		return time.Time{}, fmt.Errorf("unable to parse date: empty value")
	}

	if t, ok := ParseTimestamp(clean); ok {
		return t, nil
	}
	for _, layout := range GenericFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ParseCell parses a cell of any type. Numeric cells are treated as Excel
// serial dates, which is how workbooks store dates.
func ParseCell(v interface{}) (time.Time, bool) {
	switch c := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return c, !c.IsZero()
	case string:
		t, err := ParseDateString(c)
		return t, err == nil
	case float64:
		return fromExcelSerial(c)
	case int:
		return fromExcelSerial(float64(c))
	case int64:
		return fromExcelSerial(float64(c))
	default:
		return time.Time{}, false
	}
}

func fromExcelSerial(serial float64) (time.Time, bool) {
	if serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CleanDateString trims the value and collapses internal whitespace.
func CleanDateString(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// MonthKey returns the sortable "YYYY-MM" key of t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}
