package categorizer

import (
	"fmt"
	"strings"

	"github.com/Bublikus/groshify-sub000/internal/models"
)

// BuildPrompt renders the classification request. Transactions are numbered
// from 1; the reply refers to them by that index.
func BuildPrompt(items []models.CategorizationItem, categories []string, threshold float64, defaultCategory string) string {
	var b strings.Builder

	b.WriteString("You categorize bank transactions.\n")
	b.WriteString("Assign every transaction below to exactly one of these categories:\n")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "If your confidence for a transaction is below %.0f%%, use the category %q.\n\n",
		threshold*100, defaultCategory)

	b.WriteString("Transactions:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(strings.Fields(item.Description), " "))
	}

	b.WriteString("\nRespond with a JSON array only, one object per transaction, for example:\n")
	b.WriteString(`[{"index": 1, "category": "groceries", "confidence": 0.93}]`)
	b.WriteString("\nCopy the category name verbatim from the list. Confidence is a number between 0 and 1.\n")
	return b.String()
}
