package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/models"
)

// ColumnName is the synthesized name of a blank header at 0-based index i.
func ColumnName(i int) string {
	return fmt.Sprintf("Column %d", i+1)
}

// NormalizeHeaders replaces blank names with "Column N" and makes duplicates
// unique by suffixing " (2)", " (3)" and so on.
func NormalizeHeaders(raw []string, trim bool) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, name := range raw {
		if trim {
			name = strings.TrimSpace(name)
		}
		if strings.TrimSpace(name) == "" {
			name = ColumnName(i)
		}
		unique := name
		for n := 2; seen[unique]; n++ {
			unique = fmt.Sprintf("%s (%d)", name, n)
		}
		seen[unique] = true
		headers[i] = unique
	}
	return headers
}

// CellText renders a cell as header text.
func CellText(v models.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
