// Package xlsxparser parses spreadsheet workbooks into normalized documents:
// OOXML (.xlsx) through excelize and Excel 97-2003 BIFF (.xls) through
// extrame/xls.
package xlsxparser

import (
	"archive/zip"
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"

	"github.com/xuri/excelize/v2"
)

// Name identifies the parser in logs and errors.
const Name = "xlsx"

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	// Encrypted OOXML packages are OLE containers holding an EncryptionInfo stream.
	encryptionMarker = utf16LE("EncryptionInfo")
)

// Parser is the workbook parser.
type Parser struct {
	parser.BaseParser
}

// New returns a parser accepting .xlsx and .xls files.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(Name, []string{".xlsx", ".xls"}, logger)}
}

// Parse implements parser.Parser. Numeric cells become float64, boolean cells
// bool and everything else string; blank cells are "".
func (p *Parser) Parse(file parser.File, opts parser.Options) (*models.Document, error) {
	data, err := parser.ReadAll(file, Name)
	if err != nil {
		return nil, err
	}
	if IsLegacyWorkbook(data) {
		return p.parseLegacy(file, data, opts)
	}

	wb, err := p.open(file, data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			p.GetLogger().WithError(cerr).Warn("Failed to close workbook",
				logging.Field{Key: logging.FieldFile, Value: file.Name})
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgNoSheets, nil)
	}
	if opts.SheetIndex < 0 || opts.SheetIndex >= len(sheets) {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgSheetOutOfRange, nil)
	}
	sheet := sheets[opts.SheetIndex]

	rows, err := readSheet(wb, sheet, opts.SkipEmptyRows)
	if err != nil {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgCorruptedWorkbook, err)
	}

	p.GetLogger().Debug("Read sheet",
		logging.Field{Key: logging.FieldFile, Value: file.Name},
		logging.Field{Key: logging.FieldSheet, Value: sheet},
		logging.Field{Key: logging.FieldRows, Value: len(rows)})

	return p.BuildDocument(file, rows, opts)
}

// open decodes the workbook. When the strict decode fails the archive is
// repacked without its damaged entries and decoded once more.
func (p *Parser) open(file parser.File, data []byte) (*excelize.File, error) {
	if IsPasswordProtected(data) {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgPasswordProtected, nil)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		return wb, nil
	}

	p.GetLogger().WithError(err).Debug("Strict workbook decode failed, retrying leniently",
		logging.Field{Key: logging.FieldFile, Value: file.Name})

	repaired, dropped, serr := salvage(data)
	if serr == nil {
		wb, rerr := excelize.OpenReader(bytes.NewReader(repaired))
		if rerr == nil {
			p.GetLogger().Warn("Workbook decoded in lenient mode",
				logging.Field{Key: logging.FieldFile, Value: file.Name},
				logging.Field{Key: "dropped_entries", Value: dropped})
			return wb, nil
		}
	}

	return nil, parsererror.Malformed(Name, file.Name, classify(data, err), err)
}

// classify maps a decode failure onto a user-facing message.
func classify(data []byte, err error) string {
	switch {
	case errors.Is(err, excelize.ErrWorkbookPassword):
		return parsererror.MsgPasswordProtected
	case errors.Is(err, zip.ErrAlgorithm), errors.Is(err, zip.ErrChecksum):
		return parsererror.MsgCorruptedWorkbook
	case bytes.HasPrefix(data, zipSignature):
		// A zip container that cannot be read back.
		return parsererror.MsgCorruptedWorkbook
	default:
		return parsererror.MsgInvalidWorkbook
	}
}

// IsPasswordProtected reports whether data looks like an encrypted OOXML
// package.
func IsPasswordProtected(data []byte) bool {
	return bytes.HasPrefix(data, oleSignature) && bytes.Contains(data, encryptionMarker)
}

func readSheet(wb *excelize.File, sheet string, skipEmpty bool) ([][]models.Value, error) {
	raw, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	rows := make([][]models.Value, 0, len(raw))
	for r, cells := range raw {
		if skipEmpty && isBlank(cells) {
			continue
		}
		row := make([]models.Value, len(cells))
		for c, text := range cells {
			row[c] = cellValue(wb, sheet, c+1, r+1, text)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellValue(wb *excelize.File, sheet string, col, row int, text string) models.Value {
	if text == "" {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return text
	}
	kind, err := wb.GetCellType(sheet, name)
	if err != nil {
		return text
	}

	switch kind {
	case excelize.CellTypeBool:
		return text == "1" || strings.EqualFold(text, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func utf16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}
