// Package camtparser parses ISO 20022 CAMT.053 bank statements (.xml) into
// normalized documents with one row per booked entry.
package camtparser

import (
	"bytes"

	"github.com/Bublikus/groshify-sub000/internal/currencyutils"
	"github.com/Bublikus/groshify-sub000/internal/dateutils"
	"github.com/Bublikus/groshify-sub000/internal/logging"
	"github.com/Bublikus/groshify-sub000/internal/models"
	"github.com/Bublikus/groshify-sub000/internal/parser"
	"github.com/Bublikus/groshify-sub000/internal/parsererror"

	"gopkg.in/xmlpath.v2"
)

// Name identifies the parser in logs and errors.
const Name = "camt053"

// Column headers of the produced document. Date comes first and Amount third
// so that the default positional aggregation columns apply unchanged.
const (
	HeaderDate        = "Date"
	HeaderDescription = "Description"
	HeaderAmount      = "Amount"
	HeaderCurrency    = "Currency"
	HeaderReference   = "Reference"
)

// Headers lists the document columns in order.
var Headers = []string{HeaderDate, HeaderDescription, HeaderAmount, HeaderCurrency, HeaderReference}

const debitIndicator = "DBIT"

// Parser is the CAMT.053 parser.
type Parser struct {
	parser.BaseParser
}

// New returns a parser accepting .xml files.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(Name, []string{".xml"}, logger)}
}

// Parse implements parser.Parser. Debit entries get a negative amount.
// Entries whose amount cannot be read are skipped. HeaderRow and
// SheetIndex do not apply.
func (p *Parser) Parse(file parser.File, opts parser.Options) (*models.Document, error) {
	data, err := parser.ReadAll(file, Name)
	if err != nil {
		return nil, err
	}

	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgInvalidStatement, err)
	}
	if !pathStatement.Exists(root) {
		return nil, parsererror.Malformed(Name, file.Name, parsererror.MsgInvalidStatement, nil)
	}

	header := make([]models.Value, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	rows := [][]models.Value{header}

	iter := pathEntries.Iter(root)
	for iter.Next() {
		row, ok := p.entryRow(file, iter.Node())
		if ok {
			rows = append(rows, row)
		}
	}

	opts.HeaderRow = 0
	return p.BuildDocument(file, rows, opts)
}

func (p *Parser) entryRow(file parser.File, entry *xmlpath.Node) ([]models.Value, bool) {
	amountText := text(entry, pathAmount)
	amount, err := currencyutils.ParseAmount(amountText)
	if err != nil || amountText == "" {
		p.GetLogger().WithError(err).Warn("Skipping entry with unreadable amount",
			logging.Field{Key: logging.FieldFile, Value: file.Name},
			logging.Field{Key: "amount", Value: amountText})
		return nil, false
	}

	debit := text(entry, pathCreditDebit) == debitIndicator
	if debit {
		amount = amount.Neg()
	}

	date := firstOf(entry, pathBookingDate, pathBookingDtTm, pathValueDate)
	if t, err := dateutils.ParseDateString(date); err == nil {
		date = dateutils.ToISODate(t)
	}

	description := firstOf(entry, pathRemittance, pathAddEntryInfo, pathAddTxInfo)
	if description == "" {
		if debit {
			description = text(entry, pathCreditorName)
		} else {
			description = text(entry, pathDebtorName)
		}
	}

	return []models.Value{
		date,
		description,
		amount.InexactFloat64(),
		text(entry, pathCurrency),
		firstOf(entry, pathEndToEndID, pathTxID, pathAcctSvcrRef, pathPmtInfID),
	}, true
}
