package categorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// replyItem is one decoded classification.
type replyItem struct {
	Index      int     `json:"index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// extractJSONArray returns the substring from the first '[' to the last ']',
// which drops any prose or code fences around the array.
func extractJSONArray(reply string) (string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return "", errors.New("no JSON array in reply")
	}
	return reply[start : end+1], nil
}

// decodeReply parses the classifier reply into records keyed by index. The
// first record for an index wins.
func decodeReply(reply string) (map[int]replyItem, error) {
	raw, err := extractJSONArray(reply)
	if err != nil {
		return nil, err
	}

	var items []replyItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}

	byIndex := make(map[int]replyItem, len(items))
	for _, it := range items {
		if _, dup := byIndex[it.Index]; dup {
			continue
		}
		it.Category = strings.TrimSpace(it.Category)
		byIndex[it.Index] = it
	}
	return byIndex, nil
}
