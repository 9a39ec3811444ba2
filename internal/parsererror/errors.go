// Package parsererror defines the typed errors raised while ingesting
// exports and while talking to the external classifier.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a ParseError for callers that need to branch on it.
type Kind string

const (
	// KindUnsupportedFormat means no registered parser accepts the file.
	KindUnsupportedFormat Kind = "unsupported_format"
	// KindMalformedInput covers empty files, corrupted or protected workbooks
	// and anything else a parser cannot turn into rows.
	KindMalformedInput Kind = "malformed_input"
)

// User-facing messages. Callers surface these verbatim.
const (
	MsgNoDataRows          = "empty or no data rows"
	MsgNoSheets            = "no sheets found"
	MsgSheetOutOfRange     = "sheet index out of range"
	MsgNoParser            = "no parser found for file type"
	MsgCorruptedWorkbook   = "the workbook is corrupted or uses an unsupported compression format"
	MsgInvalidWorkbook     = "the file is not a valid Excel workbook"
	MsgPasswordProtected   = "the workbook is password-protected; remove the password and try again"
	MsgUnreadableInputFile = "could not read file"
	MsgInvalidStatement    = "the file is not a valid CAMT.053 statement"
)

// ParseError is returned by every parser and by the registry.
type ParseError struct {
	Parser string
	File   string
	Kind   Kind
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Parser != "" {
		b.WriteString(e.Parser)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.File != "" {
		fmt.Fprintf(&b, " (file '%s')", e.File)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Malformed builds a KindMalformedInput error.
func Malformed(parser, file, msg string, err error) *ParseError {
	return &ParseError{Parser: parser, File: file, Kind: KindMalformedInput, Msg: msg, Err: err}
}

// Unsupported builds the registry's KindUnsupportedFormat error listing the
// extensions that would have been accepted.
func Unsupported(file string, supported []string) *ParseError {
	return &ParseError{
		File: file,
		Kind: KindUnsupportedFormat,
		Msg:  fmt.Sprintf("%s (supported: %s)", MsgNoParser, strings.Join(supported, ", ")),
	}
}

// KindOf returns the Kind of the first ParseError in err's chain, or "".
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsUnsupportedFormat reports whether err is a KindUnsupportedFormat ParseError.
func IsUnsupportedFormat(err error) bool {
	return KindOf(err) == KindUnsupportedFormat
}

// IsMalformedInput reports whether err is a KindMalformedInput ParseError.
func IsMalformedInput(err error) bool {
	return KindOf(err) == KindMalformedInput
}

// CategorizationKind classifies gateway failures. They never reach callers of
// the gateway; they are logged and converted into the fallback result.
type CategorizationKind string

const (
	CategorizationTimeout        CategorizationKind = "timeout"
	CategorizationTransport      CategorizationKind = "transport"
	CategorizationMalformedReply CategorizationKind = "malformed_reply"
)

// CategorizationError wraps a failed classification round-trip.
type CategorizationError struct {
	Kind CategorizationKind
	Err  error
}

func (e *CategorizationError) Error() string {
	switch e.Kind {
	case CategorizationTimeout:
		return fmt.Sprintf("categorization timed out: %v", e.Err)
	case CategorizationMalformedReply:
		return fmt.Sprintf("categorization reply malformed: %v", e.Err)
	default:
		return fmt.Sprintf("categorization request failed: %v", e.Err)
	}
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a timed-out categorization.
func IsTimeout(err error) bool {
	var ce *CategorizationError
	return errors.As(err, &ce) && ce.Kind == CategorizationTimeout
}
