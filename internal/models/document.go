package models

import (
	"encoding/json"
	"fmt"
)

// PreviewSampleSize is the number of leading rows copied into a Preview.
const PreviewSampleSize = 3

// Value is a single cell. Parsers only ever store string, float64, bool or
// nil in it; aggregation coerces whatever it finds.
type Value = interface{}

// Row is one normalized data row. Values holds exactly the document headers.
type Row struct {
	ID     string
	Values map[string]Value
}

// RowID returns the identifier of the row at the given 1-based position.
func RowID(position int) string {
	return fmt.Sprintf("row-%d", position)
}

// Get returns the cell under header, or nil when the header is unknown.
func (r Row) Get(header string) Value {
	return r.Values[header]
}

// MarshalJSON flattens the row into {"id": ..., "<header>": <cell>, ...}.
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]Value, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat["id"] = r.ID
	return json.Marshal(flat)
}

// Preview is the lightweight summary shown before a full import.
type Preview struct {
	Headers       []string           `json:"headers"`
	TotalRowCount int                `json:"totalRowCount"`
	SampleRows    []map[string]Value `json:"sampleRows"`
}

// Document is the format-agnostic result of a parse call.
type Document struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	Preview Preview  `json:"preview"`
}

// NewDocument assembles a Document from already-normalized headers and raw
// records. Records shorter than headers are padded with "" and longer ones
// are truncated; row ids follow record order starting at row-1.
func NewDocument(headers []string, records [][]Value) *Document {
	doc := &Document{
		Headers: append([]string(nil), headers...),
		Rows:    make([]Row, 0, len(records)),
	}

	for i, rec := range records {
		values := make(map[string]Value, len(headers))
		for col, h := range headers {
			if col < len(rec) && rec[col] != nil {
				values[h] = rec[col]
			} else {
				values[h] = ""
			}
		}
		doc.Rows = append(doc.Rows, Row{ID: RowID(i + 1), Values: values})
	}

	doc.Preview = Preview{
		Headers:       append([]string(nil), headers...),
		TotalRowCount: len(doc.Rows),
		SampleRows:    make([]map[string]Value, 0, PreviewSampleSize),
	}
	for i := 0; i < len(doc.Rows) && i < PreviewSampleSize; i++ {
		sample := make(map[string]Value, len(headers))
		for k, v := range doc.Rows[i].Values {
			sample[k] = v
		}
		doc.Preview.SampleRows = append(doc.Preview.SampleRows, sample)
	}

	return doc
}

// Cell returns the value at positional column col of row, or nil when col
// does not address a header.
func (d *Document) Cell(row Row, col int) Value {
	if d == nil || col < 0 || col >= len(d.Headers) {
		return nil
	}
	return row.Values[d.Headers[col]]
}
