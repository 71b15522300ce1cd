package outfit

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type suggestionsPayload struct {
	Suggestions []suggestionPayload `json:"suggestions"`
}

type suggestionPayload struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// normalizeSuggestions cleans up model output: trims fields, drops entries
// without a description, deduplicates by label and caps the result at limit.
func normalizeSuggestions(items []suggestionPayload, limit int) []Suggestion {
	titler := cases.Title(language.Und)
	seen := make(map[string]struct{})
	var result []Suggestion
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = desc
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, Suggestion{Label: titler.String(label), Description: desc})
		if len(result) == limit {
			break
		}
	}
	return result
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
