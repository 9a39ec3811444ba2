// Package aggregation derives month buckets, signed sums and category
// summaries from a normalized document. Nothing here returns an error:
// unreadable dates drop a row from bucketing and unreadable amounts count
// as zero.
package aggregation

import (
	"sort"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/dateutils"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"

	"github.com/shopspring/decimal"
)

// Columns addresses the semantic columns by position in the header list.
type Columns struct {
	Date        int
	Description int
	Amount      int
}

// DefaultColumns is the Date, Description, Amount layout.
func DefaultColumns() Columns {
	return Columns{Date: 0, Description: 1, Amount: 2}
}

// Grouping is the result of GroupByMonth.
type Grouping struct {
	// Buckets are sorted oldest first.
	Buckets []models.MonthBucket
	// Overall covers every row of the document, dated or not.
	Overall models.Sums
	// Undated holds the rows whose date could not be read.
	Undated []models.Row
}

// Aggregator computes aggregates for one column layout and label locale.
type Aggregator struct {
	columns Columns
	locale  string
	logger  logging.Logger
}

// New creates an Aggregator. An empty locale means English labels.
func New(columns Columns, locale string, logger logging.Logger) *Aggregator {
	if locale == "" {
		locale = dateutils.DefaultLocale
	}
	return &Aggregator{
		columns: columns,
		locale:  locale,
		logger:  logging.OrDefault(logger),
	}
}

// Columns returns the configured layout.
func (a *Aggregator) Columns() Columns {
	return a.columns
}

// ParseDateCell reads a date cell: the DD.MM.YYYY HH:MM:SS pattern first,
// then the generic layouts, then Excel serial numbers.
func ParseDateCell(v models.Value) (time.Time, bool) {
	return dateutils.ParseCell(v)
}

// Amount returns the amount of row, 0 when unreadable.
func (a *Aggregator) Amount(doc *models.Document, row models.Row) decimal.Decimal {
	return Decimal(doc.Cell(row, a.columns.Amount))
}

// Description returns the description cell of row as text.
func (a *Aggregator) Description(doc *models.Document, row models.Row) string {
	return parser.CellText(doc.Cell(row, a.columns.Description))
}

// GroupByMonth buckets the document rows by the calendar month of their date
// cell and accumulates per-bucket and overall sums.
func (a *Aggregator) GroupByMonth(doc *models.Document) Grouping {
	var g Grouping
	if doc == nil {
		return g
	}

	index := make(map[string]int)
	for _, row := range doc.Rows {
		amount := a.Amount(doc, row)
		g.Overall.Add(amount)

		t, ok := ParseDateCell(doc.Cell(row, a.columns.Date))
		if !ok {
			g.Undated = append(g.Undated, row)
			continue
		}

		key := dateutils.MonthKey(t)
		i, seen := index[key]
		if !seen {
			i = len(g.Buckets)
			index[key] = i
			g.Buckets = append(g.Buckets, models.MonthBucket{
				Key:   key,
				Label: dateutils.MonthLabel(t, a.locale),
				Year:  t.Year(),
				Month: t.Month(),
			})
		}
		g.Buckets[i].Rows = append(g.Buckets[i].Rows, row)
		g.Buckets[i].Add(amount)
	}

	sort.SliceStable(g.Buckets, func(i, j int) bool {
		return g.Buckets[i].Before(g.Buckets[j])
	})

	if len(g.Undated) > 0 {
		a.logger.Debug("Rows without a readable date were left out of month buckets",
			logging.Field{Key: logging.FieldCount, Value: len(g.Undated)})
	}
	return g
}

// findBucket matches label against bucket labels and month keys.
func findBucket(buckets []models.MonthBucket, label string) (models.MonthBucket, bool) {
	for _, b := range buckets {
		if b.Label == label || b.Key == label {
			return b, true
		}
	}
	return models.MonthBucket{}, false
}

// CurrentMonthData returns all rows for models.AllMonths, the rows of the
// matching bucket otherwise, and an empty slice for unknown labels.
func CurrentMonthData(rows []models.Row, buckets []models.MonthBucket, label string) []models.Row {
	if label == models.AllMonths {
		return rows
	}
	if b, ok := findBucket(buckets, label); ok {
		return b.Rows
	}
	return []models.Row{}
}

// CurrentSums returns overall for models.AllMonths, the sums of the matching
// bucket otherwise, and zero sums for unknown labels.
func CurrentSums(overall models.Sums, buckets []models.MonthBucket, label string) models.Sums {
	if label == models.AllMonths {
		return overall
	}
	if b, ok := findBucket(buckets, label); ok {
		return b.Sums
	}
	return models.Sums{}
}

// CategorySummaries counts and totals rows per assigned category, sorted by
// absolute total descending and then by name. Rows missing from categories
// count towards defaultCategory.
func (a *Aggregator) CategorySummaries(doc *models.Document, rows []models.Row, categories map[string]string, defaultCategory string) []models.CategorySummary {
	byName := make(map[string]*models.CategorySummary)
	var order []string

	for _, row := range rows {
		name, ok := categories[row.ID]
		if !ok || name == "" {
			name = defaultCategory
		}
		s, seen := byName[name]
		if !seen {
			s = &models.CategorySummary{Category: name}
			byName[name] = s
			order = append(order, name)
		}
		s.Count++
		s.Total = s.Total.Add(a.Amount(doc, row))
	}

	out := make([]models.CategorySummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Total.Abs(), out[j].Total.Abs()
		if c := ai.Cmp(aj); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
