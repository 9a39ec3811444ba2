// Package parser defines the contract shared by every format parser and the
// registry that dispatches a file to the first parser accepting it.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"
)

// Parser turns one raw export into a normalized document.
type Parser interface {
	// Name identifies the parser in logs and errors.
	Name() string
	// CanParse reports whether the parser accepts the file. The check is
	// based on the file extension and is case-insensitive.
	CanParse(file File) bool
	// SupportedExtensions lists the lower-case extensions, dot included.
	SupportedExtensions() []string
	// Parse reads the whole file and returns a document, or a
	// *parsererror.ParseError describing why the input is unusable.
	Parse(file File, opts Options) (*models.Document, error)
}

// Options tune a single parse call.
type Options struct {
	// SheetIndex selects the workbook sheet, 0-based. Ignored for text input.
	SheetIndex int
	// HeaderRow is the 0-based index, among usable rows, of the header row.
	// Rows above it are ignored.
	HeaderRow int
	// SkipEmptyRows drops blank lines before the header is located.
	SkipEmptyRows bool
	// TrimHeaders trims whitespace around header names. Data cells from
	// delimited text are always trimmed.
	TrimHeaders bool
}

// DefaultOptions returns the options used when a caller has no preference.
func DefaultOptions() Options {
	return Options{
		SkipEmptyRows: true,
		TrimHeaders:   true,
	}
}

// File is a named input handle. The name carries the extension used for
// dispatch; the reader is consumed exactly once.
type File struct {
	Name   string
	Reader io.Reader
}

// NewFile wraps an in-memory payload.
func NewFile(name string, data []byte) File {
	return File{Name: name, Reader: strings.NewReader(string(data))}
}

// OpenFile opens path for parsing. The caller must Close the result.
func OpenFile(path string) (File, error) {
	f, err := os.Open(path) // #nosec G304 -- path is provided by the operator
	if err != nil {
		return File{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Reader: f}, nil
}

// Ext returns the lower-case extension of the file name.
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Close closes the underlying reader when it is closable.
func (f File) Close() error {
	if c, ok := f.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadAll reads the whole file. Read failures are reported as malformed input
// on behalf of parserName.
func ReadAll(file File, parserName string) ([]byte, error) {
	if file.Reader == nil {
		return nil, parsererror.Malformed(parserName, file.Name, parsererror.MsgUnreadableInputFile, nil)
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, parsererror.Malformed(parserName, file.Name, parsererror.MsgUnreadableInputFile, err)
	}
	return data, nil
}
