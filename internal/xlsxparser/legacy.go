package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"

	"github.com/extrame/xls"
)

// BIFF8 worksheets hold at most 256 columns.
const legacyMaxColumns = 256

var (
	errNoWorkbookStream = errors.New("compound file has no Workbook stream")
	errLegacyDecode     = errors.New("cannot decode BIFF workbook")
)

type legacySheet struct {
	name   string
	sheets int
	cells  [][]string
}

// IsLegacyWorkbook reports whether data is an unencrypted Excel 97-2003
// compound file.
func IsLegacyWorkbook(data []byte) bool {
	return bytes.HasPrefix(data, oleSignature) && !IsPasswordProtected(data)
}

// parseLegacy reads a BIFF .xls workbook. The decoder yields cell text only,
// so numeric text becomes float64 and everything else stays a string.
func (p *Parser) parseLegacy(file parser.File, data []byte, opts parser.Options) (*models.Document, error) {
	sheet, err := readLegacy(data, opts.SheetIndex)
	switch {
	case errors.Is(err, errNoWorkbookStream):
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgInvalidWorkbook, err)
	case err != nil:
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgCorruptedWorkbook, err)
	case sheet.sheets == 0:
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgNoSheets, nil)
	case opts.SheetIndex < 0 || opts.SheetIndex >= sheet.sheets:
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgSheetOutOfRange, nil)
	}

	rows := make([][]models.Value, 0, len(sheet.cells))
	for _, cells := range sheet.cells {
		if opts.SkipEmptyRows && isBlank(cells) {
			continue
		}
		row := make([]models.Value, len(cells))
		for i, text := range cells {
			row[i] = legacyValue(text)
		}
		rows = append(rows, row)
	}

	p.GetLogger().Debug("Read legacy sheet",
		logging.Field{Key: logging.FieldFile, Value: file.Name},
		logging.Field{Key: logging.FieldSheet, Value: sheet.name},
		logging.Field{Key: logging.FieldRows, Value: len(rows)})

	return p.BuildDocument(file, rows, opts)
}

// readLegacy decodes the sheet at index. The decoder panics on some
// malformed streams; that is reported as errLegacyDecode.
func readLegacy(data []byte, index int) (sheet *legacySheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("%w: %v", errLegacyDecode, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoWorkbookStream, err)
	}
	if wb == nil {
		return nil, errNoWorkbookStream
	}

	sheet = &legacySheet{sheets: wb.NumSheets()}
	if index < 0 || index >= sheet.sheets {
		return sheet, nil
	}
	ws := wb.GetSheet(index)
	if ws == nil {
		return nil, errLegacyDecode
	}
	sheet.name = ws.Name
	for r := 0; r <= int(ws.MaxRow); r++ {
		sheet.cells = append(sheet.cells, legacyRow(ws, r))
	}
	return sheet, nil
}

// legacyRow returns the cells of row r with trailing blanks removed. Rows
// missing from the sheet come back empty.
func legacyRow(ws *xls.WorkSheet, r int) (cells []string) {
	// WorkSheet.Row dereferences the row before returning it.
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := ws.Row(r)
	if row == nil {
		return nil
	}
	cells = make([]string, legacyMaxColumns)
	last := -1
	for c := range cells {
		cells[c] = row.Col(c)
		if cells[c] != "" {
			last = c
		}
	}
	return cells[:last+1]
}

func legacyValue(text string) models.Value {
	if text == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return text
}
