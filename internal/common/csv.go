// Package common provides the CSV summary export shared by the CLI commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Summary sections, in the order they are written.
const (
	SectionMonth    = "month"
	SectionTotal    = "total"
	SectionCategory = "category"
)

// SummaryRecord is one line of a summary export. Category lines leave
// Positive and Negative empty and carry their total in Net.
type SummaryRecord struct {
	Section  string `csv:"section"`
	Key      string `csv:"key"`
	Label    string `csv:"label"`
	Count    int    `csv:"count"`
	Positive string `csv:"positive"`
	Negative string `csv:"negative"`
	Net      string `csv:"net"`
}

// Summary is the data a summary export is built from.
type Summary struct {
	Months     []models.MonthBucket
	Overall    models.Sums
	TotalRows  int
	Categories []models.CategorySummary
}

// BuildSummaryRecords flattens s into records: one per month bucket, the
// overall total, then one per category. Amounts are fixed to decimals places.
func BuildSummaryRecords(s Summary, decimals int) []SummaryRecord {
	fixed := func(d decimal.Decimal) string {
		return d.StringFixed(int32(decimals)) // #nosec G115 -- decimals is validated and small
	}

	records := make([]SummaryRecord, 0, len(s.Months)+len(s.Categories)+1)
	for _, m := range s.Months {
		records = append(records, SummaryRecord{
			Section:  SectionMonth,
			Key:      m.Key,
			Label:    m.Label,
			Count:    len(m.Rows),
			Positive: fixed(m.PositiveSum),
			Negative: fixed(m.NegativeSum),
			Net:      fixed(m.NetSum),
		})
	}
	records = append(records, SummaryRecord{
		Section:  SectionTotal,
		Key:      models.AllMonths,
		Label:    models.AllMonths,
		Count:    s.TotalRows,
		Positive: fixed(s.Overall.PositiveSum),
		Negative: fixed(s.Overall.NegativeSum),
		Net:      fixed(s.Overall.NetSum),
	})
	for _, c := range s.Categories {
		records = append(records, SummaryRecord{
			Section: SectionCategory,
			Key:     c.Category,
			Label:   c.Category,
			Count:   c.Count,
			Net:     fixed(c.Total),
		})
	}
	return records
}

// SummaryWriter writes summary records as delimited text.
type SummaryWriter struct {
	Delimiter rune
	logger    logging.Logger
}

// NewSummaryWriter returns a comma-delimited writer.
func NewSummaryWriter(logger logging.Logger) *SummaryWriter {
	return &SummaryWriter{Delimiter: ',', logger: logging.OrDefault(logger)}
}

// Write marshals records, header first, to w.
func (sw *SummaryWriter) Write(w io.Writer, records []SummaryRecord) error {
	if records == nil {
		return fmt.Errorf("cannot write nil records to CSV")
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = sw.Delimiter

	if err := gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteFile writes records to path, creating parent directories as needed.
func (sw *SummaryWriter) WriteFile(path string, records []SummaryRecord) error {
	sw.logger.Info("Writing summary CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(records)})

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- output path chosen by the user
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			sw.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	return sw.Write(file, records)
}
