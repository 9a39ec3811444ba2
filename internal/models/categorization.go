package models

// CategorizationItem is one transaction submitted for classification.
type CategorizationItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// CategorizationResult is the reconciled classification of one item.
type CategorizationResult struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// FallbackResult is the result used whenever classification is skipped or fails.
func FallbackResult(id, defaultCategory string) CategorizationResult {
	return CategorizationResult{ID: id, Category: defaultCategory, Confidence: 0}
}
