package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"finextract/internal/domain"
)

// rawResult accepts loosely typed model output: numbers where strings are expected,
// nulls, and lower-case keys (encoding/json matches field names case-insensitively).
type rawResult struct {
	Currency interface{}                       `json:"Currency"`
	Years    []interface{}                     `json:"Years"`
	Items    map[string]map[string]interface{} `json:"Items"`
}

// DecodeFallbackResult turns a model's text answer into a FallbackResult.
// Markdown code fences and surrounding prose are stripped. Malformed JSON is repaired
// before giving up. An answer without an "Items" object is rejected.
func DecodeFallbackResult(text string) (*domain.FallbackResult, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedResponse)
	}

	raw, err := decodeRaw(cleaned)
	if err != nil {
		repaired, repairErr := jsonrepair.RepairJSON(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(text, 500))
		}
		raw, err = decodeRaw(repaired)
		if err != nil {
			return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(text, 500))
		}
	}
	if raw.Items == nil {
		return nil, fmt.Errorf("%w: missing Items (raw: %s)", ErrMalformedResponse, truncate(text, 500))
	}

	out := &domain.FallbackResult{
		Items: make(map[string]map[string]string, len(raw.Items)),
	}
	if s, ok := scalarString(raw.Currency); ok {
		out.Currency = s
	}
	for _, y := range raw.Years {
		if s, ok := scalarString(y); ok && s != "" {
			out.Years = append(out.Years, s)
		}
	}
	for item, values := range raw.Items {
		converted := make(map[string]string, len(values))
		for year, v := range values {
			if s, ok := scalarString(v); ok {
				converted[year] = s
			}
		}
		out.Items[item] = converted
	}
	return out, nil
}

func decodeRaw(s string) (*rawResult, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw rawResult
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// stripCodeFences removes ```json fences and anything outside the outermost braces.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	if start >= 0 {
		// unterminated object, left for the repair pass
		return text[start:]
	}
	return text
}

func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// truncate shortens s for log and error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

