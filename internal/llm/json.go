package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// extractJSON strips markdown code fences and any prose around the
// outermost JSON object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines)
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		text = strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
	}

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	return text
}

// ParseJSONResponse parses a JSON object from an LLM response, handling
// markdown code blocks. It returns nil when no object can be parsed.
func ParseJSONResponse(text string) map[string]any {
	text = extractJSON(text)
	if text == "" {
		return nil
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		log.Printf("Failed to parse LLM response as JSON: %v", err)
		return nil
	}
	return result
}

// DecodeJSONResponse decodes a JSON object from an LLM response into out.
func DecodeJSONResponse(text string, out any) error {
	text = extractJSON(text)
	if text == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("parsing LLM response: %w", err)
	}
	return nil
}
