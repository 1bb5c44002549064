package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseMetadata decodes a metadata response: a JSON array of entries, or an
// object holding the array under "cards". A surrounding fenced code block is
// ignored. Every entry must carry a name.
func ParseMetadata(text string) ([]CardMetadata, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty metadata response", ErrInvalidResponse)
	}

	var entries []CardMetadata
	if strings.HasPrefix(text, "{") {
		var wrapped struct {
			Cards []CardMetadata `json:"cards"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
		}
		entries = wrapped.Cards
	} else if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}

	for i, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d missing name", ErrInvalidResponse, i)
		}
	}
	return entries, nil
}
