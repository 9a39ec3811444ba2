package xlsxparser

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

func buildWorkbook(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	fill(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func set(t *testing.T, f *excelize.File, sheetName, cell string, v interface{}) {
	t.Helper()
	require.NoError(t, f.SetCellValue(sheetName, cell, v))
}

func statement(t *testing.T) []byte {
	return buildWorkbook(t, func(f *excelize.File) {
		set(t, f, sheet, "A1", "Date")
		set(t, f, sheet, "B1", "")
		set(t, f, sheet, "C1", "Amount")
		set(t, f, sheet, "D1", "Cleared")

		set(t, f, sheet, "A2", "01.01.2024 10:00:00")
		set(t, f, sheet, "B2", "Coffee")
		set(t, f, sheet, "C2", -5)
		set(t, f, sheet, "D2", true)

		set(t, f, sheet, "A4", "01.02.2024 09:00:00")
		set(t, f, sheet, "B4", "Salary")
		set(t, f, sheet, "C4", 1000.5)
	})
}

func TestParse(t *testing.T) {
	p := New(logging.NewMockLogger())
	file := parser.NewFile("statement.xlsx", statement(t))
	require.True(t, p.CanParse(file))

	doc, err := p.Parse(file, parser.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Column 2", "Amount", "Cleared"}, doc.Headers)
	require.Len(t, doc.Rows, 2, "blank row 3 is dropped")

	first := doc.Rows[0]
	assert.Equal(t, "row-1", first.ID)
	assert.Equal(t, "Coffee", first.Get("Column 2"))
	assert.Equal(t, -5.0, first.Get("Amount"))
	assert.Equal(t, true, first.Get("Cleared"))

	second := doc.Rows[1]
	assert.Equal(t, "row-2", second.ID)
	assert.Equal(t, 1000.5, second.Get("Amount"))
	assert.Equal(t, "", second.Get("Cleared"))

	assert.Equal(t, 2, doc.Preview.TotalRowCount)
	assert.Len(t, doc.Preview.SampleRows, 2)
}

func TestParse_DateCellsAreSerials(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		set(t, f, sheet, "A1", "Date")
		set(t, f, sheet, "A2", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	})

	doc, err := New(nil).Parse(parser.NewFile("d.xlsx", data), parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 45292.0, doc.Rows[0].Get("Date"))
}

func TestParse_SheetSelection(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		set(t, f, sheet, "A1", "First")
		set(t, f, sheet, "A2", "x")
		_, err := f.NewSheet("Second")
		require.NoError(t, err)
		set(t, f, "Second", "A1", "Other")
		set(t, f, "Second", "A2", "y")
	})

	opts := parser.DefaultOptions()
	opts.SheetIndex = 1
	doc, err := New(nil).Parse(parser.NewFile("multi.xlsx", data), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Other"}, doc.Headers)

	opts.SheetIndex = 2
	_, err = New(nil).Parse(parser.NewFile("multi.xlsx", data), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), parsererror.MsgSheetOutOfRange)

	opts.SheetIndex = -1
	_, err = New(nil).Parse(parser.NewFile("multi.xlsx", data), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), parsererror.MsgSheetOutOfRange)
}

func TestParse_HeaderOnly(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		set(t, f, sheet, "A1", "Date")
	})
	_, err := New(nil).Parse(parser.NewFile("h.xlsx", data), parser.DefaultOptions())
	require.Error(t, err)
	assert.True(t, parsererror.IsMalformedInput(err))
	assert.Contains(t, err.Error(), parsererror.MsgNoDataRows)
}

func TestParse_DecodeFailures(t *testing.T) {
	valid := statement(t)

	protected := append([]byte{}, oleSignature...)
	protected = append(protected, make([]byte, 504)...)
	protected = append(protected, utf16LE("EncryptionInfo")...)

	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"not a workbook", []byte("Date,Amount\n2024-01-01,5\n"), parsererror.MsgInvalidWorkbook},
		{"truncated archive", valid[:len(valid)/2], parsererror.MsgCorruptedWorkbook},
		{"password protected", protected, parsererror.MsgPasswordProtected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockLog := logging.NewMockLogger()
			_, err := New(mockLog).Parse(parser.NewFile("bad.xlsx", tc.data), parser.DefaultOptions())
			require.Error(t, err)
			assert.True(t, parsererror.IsMalformedInput(err))
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestIsPasswordProtected(t *testing.T) {
	assert.False(t, IsPasswordProtected(nil))
	assert.False(t, IsPasswordProtected(oleSignature))
	assert.True(t, IsPasswordProtected(bytes.Join([][]byte{oleSignature, utf16LE("EncryptionInfo")}, nil)))
}

func TestCanParse(t *testing.T) {
	p := New(nil)
	assert.True(t, p.CanParse(parser.File{Name: "a.XLS"}))
	assert.False(t, IsLegacyWorkbook([]byte("PK\x03\x04")))
	assert.True(t, p.CanParse(parser.File{Name: "a.xlsx"}))
	assert.False(t, p.CanParse(parser.File{Name: "a.csv"}))
	assert.Equal(t, []string{".xlsx", ".xls"}, p.SupportedExtensions())
}

func TestParse_LegacyWorkbook(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "statement.xls"))
	require.NoError(t, err)
	require.True(t, IsLegacyWorkbook(data))

	p := New(logging.NewMockLogger())
	file := parser.NewFile("statement.xls", data)
	require.True(t, p.CanParse(file))

	doc, err := p.Parse(file, parser.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount"}, doc.Headers)
	require.Len(t, doc.Rows, 3, "the missing fourth row is skipped")

	assert.Equal(t, "row-1", doc.Rows[0].ID)
	assert.Equal(t, "15.01.2024 10:00:00", doc.Rows[0].Get("Date"))
	assert.Equal(t, "Coffee", doc.Rows[0].Get("Description"))
	assert.Equal(t, -4.5, doc.Rows[0].Get("Amount"))
	assert.Equal(t, 2500.0, doc.Rows[1].Get("Amount"))
	assert.Equal(t, "Rent", doc.Rows[2].Get("Description"))
	assert.Equal(t, -1200.0, doc.Rows[2].Get("Amount"))
}

func TestParse_LegacyWorkbookSheetSelection(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "statement.xls"))
	require.NoError(t, err)

	opts := parser.DefaultOptions()
	opts.SheetIndex = 1
	doc, err := New(nil).Parse(parser.NewFile("statement.xls", data), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Note"}, doc.Headers)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "exported from online banking", doc.Rows[0].Get("Note"))

	opts.SheetIndex = 2
	_, err = New(nil).Parse(parser.NewFile("statement.xls", data), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), parsererror.MsgSheetOutOfRange)
}

func TestParse_CompoundFileWithoutWorkbook(t *testing.T) {
	data := append(append([]byte{}, oleSignature...), make([]byte, 1024)...)
	require.True(t, IsLegacyWorkbook(data))

	_, err := New(nil).Parse(parser.NewFile("other.xls", data), parser.DefaultOptions())
	require.Error(t, err)
	assert.True(t, parsererror.IsMalformedInput(err))
	assert.Contains(t, err.Error(), parsererror.MsgInvalidWorkbook)
}

// withDamagedEntry repacks a workbook and appends an entry stored with a
// compression method no reader supports.
func withDamagedEntry(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		content, err := readEntry(f)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}

	junk := []byte("<Properties/>")
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "docProps/custom.xml",
		Method:             99,
		CompressedSize64:   uint64(len(junk)),
		UncompressedSize64: uint64(len(junk)),
	})
	require.NoError(t, err)
	_, err = w.Write(junk)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParse_LenientDecodeDropsDamagedEntries(t *testing.T) {
	data := withDamagedEntry(t, statement(t))

	_, err := excelize.OpenReader(bytes.NewReader(data))
	require.ErrorIs(t, err, zip.ErrAlgorithm, "strict decode must fail")

	mockLog := logging.NewMockLogger()
	doc, err := New(mockLog).Parse(parser.NewFile("damaged.xlsx", data), parser.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, doc.Rows, 2)
	assert.Equal(t, "Coffee", doc.Rows[0].Get("Column 2"))
	assert.True(t, mockLog.HasEntry("WARN", "Workbook decoded in lenient mode"))
}

func TestSalvage(t *testing.T) {
	repaired, dropped, err := salvage(withDamagedEntry(t, statement(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"docProps/custom.xml"}, dropped)

	zr, err := zip.NewReader(bytes.NewReader(repaired), int64(len(repaired)))
	require.NoError(t, err)
	for _, f := range zr.File {
		assert.NotEqual(t, "docProps/custom.xml", f.Name)
	}

	_, _, err = salvage(statement(t))
	assert.ErrorIs(t, err, errNothingSalvaged)

	_, _, err = salvage([]byte("not a zip"))
	assert.Error(t, err)
}
