package camtparser

import (
	"strings"

	"gopkg.in/xmlpath.v2"
)

// Paths are relative to an Ntry element unless noted.
var (
	pathStatement = xmlpath.MustCompile("//BkToCstmrStmt/Stmt")
	pathEntries   = xmlpath.MustCompile("//BkToCstmrStmt/Stmt/Ntry")

	pathAmount       = xmlpath.MustCompile("Amt")
	pathCurrency     = xmlpath.MustCompile("Amt/@Ccy")
	pathCreditDebit  = xmlpath.MustCompile("CdtDbtInd")
	pathBookingDate  = xmlpath.MustCompile("BookgDt/Dt")
	pathBookingDtTm  = xmlpath.MustCompile("BookgDt/DtTm")
	pathValueDate    = xmlpath.MustCompile("ValDt/Dt")
	pathAcctSvcrRef  = xmlpath.MustCompile("AcctSvcrRef")
	pathEndToEndID   = xmlpath.MustCompile("NtryDtls/TxDtls/Refs/EndToEndId")
	pathTxID         = xmlpath.MustCompile("NtryDtls/TxDtls/Refs/TxId")
	pathPmtInfID     = xmlpath.MustCompile("NtryDtls/TxDtls/Refs/PmtInfId")
	pathRemittance   = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
	pathAddEntryInfo = xmlpath.MustCompile("AddtlNtryInf")
	pathAddTxInfo    = xmlpath.MustCompile("NtryDtls/TxDtls/AddtlTxInf")
	pathDebtorName   = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Dbtr/Nm")
	pathCreditorName = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Cdtr/Nm")
)

// text returns the cleaned text of the first match, or "".
func text(node *xmlpath.Node, path *xmlpath.Path) string {
	s, ok := path.String(node)
	if !ok {
		return ""
	}
	return cleanText(s)
}

// firstOf returns the first non-empty match among paths.
func firstOf(node *xmlpath.Node, paths ...*xmlpath.Path) string {
	for _, p := range paths {
		if s := text(node, p); s != "" {
			return s
		}
	}
	return ""
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
