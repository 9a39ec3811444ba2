// Package csvparser parses comma-delimited bank exports into normalized
// documents.
package csvparser

import (
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
)

// Name identifies the parser in logs and errors.
const Name = "csv"

// Parser is the delimited-text parser.
type Parser struct {
	parser.BaseParser
}

// New returns a parser accepting .csv files.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(Name, []string{".csv"}, logger)}
}

// Parse implements parser.Parser. Every data cell is kept as a trimmed
// string; numeric coercion happens later, during aggregation. Header cells
// are trimmed only when opts.TrimHeaders is set.
func (p *Parser) Parse(file parser.File, opts parser.Options) (*models.Document, error) {
	data, err := parser.ReadAll(file, Name)
	if err != nil {
		return nil, err
	}

	headerRow := max(opts.HeaderRow, 0)
	lines := SplitLines(string(data))
	rows := make([][]models.Value, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		if opts.SkipEmptyRows && strings.TrimSpace(line) == "" {
			skipped++
			continue
		}
		fields := splitFields(line, len(rows) != headerRow || opts.TrimHeaders)
		row := make([]models.Value, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		p.GetLogger().Debug("Skipped blank lines",
			logging.Field{Key: logging.FieldFile, Value: file.Name},
			logging.Field{Key: logging.FieldCount, Value: skipped})
	}

	return p.BuildDocument(file, rows, opts)
}

// SplitLines splits text on LF or CRLF line breaks. A UTF-8 byte order mark
// and a single trailing line terminator are dropped.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// SplitFields splits one line on commas outside double quotes. A quote
// character toggles the quoted state and is not copied into the field.
// Fields are trimmed.
func SplitFields(line string) []string {
	return splitFields(line, true)
}

func splitFields(line string, trim bool) []string {
	field := func(b *strings.Builder) string {
		if trim {
			return strings.TrimSpace(b.String())
		}
		return b.String()
	}

	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, field(&current))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, field(&current))
}
