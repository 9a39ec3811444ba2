package parser

import (
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
)

// BaseParser carries what every format parser shares: a name, the accepted
// extensions, a logger and the header/row normalization step.
//
// Parsers embed it and implement Parse:
//
//	type MyParser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	name       string
	extensions []string
	logger     logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger falls back to the default.
func NewBaseParser(name string, extensions []string, logger logging.Logger) BaseParser {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return BaseParser{
		name:       name,
		extensions: exts,
		logger:     logging.OrDefault(logger),
	}
}

// Name implements Parser.
func (b *BaseParser) Name() string {
	return b.name
}

// SupportedExtensions implements Parser.
func (b *BaseParser) SupportedExtensions() []string {
	return append([]string(nil), b.extensions...)
}

// CanParse implements Parser.
func (b *BaseParser) CanParse(file File) bool {
	ext := file.Ext()
	if ext == "" {
		return false
	}
	for _, e := range b.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// BuildDocument turns usable rows (blank rows already dropped when requested)
// into a document. The row at opts.HeaderRow becomes the header and every row
// after it is data; at least one data row is required.
func (b *BaseParser) BuildDocument(file File, rows [][]models.Value, opts Options) (*models.Document, error) {
	headerRow := opts.HeaderRow
	if headerRow < 0 {
		headerRow = 0
	}
	if len(rows) < headerRow+2 {
		return nil, parsererror.Malformed(b.name, file.Name, parsererror.MsgNoDataRows, nil)
	}

	rawHeaders := make([]string, len(rows[headerRow]))
	for i, cell := range rows[headerRow] {
		rawHeaders[i] = CellText(cell)
	}
	headers := NormalizeHeaders(rawHeaders, opts.TrimHeaders)

	doc := models.NewDocument(headers, rows[headerRow+1:])

	b.logger.Info("Parsed document",
		logging.Field{Key: logging.FieldParser, Value: b.name},
		logging.Field{Key: logging.FieldFile, Value: file.Name},
		logging.Field{Key: logging.FieldHeaders, Value: len(headers)},
		logging.Field{Key: logging.FieldRows, Value: len(doc.Rows)})

	return doc, nil
}
