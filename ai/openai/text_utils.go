package openai

import (
	"encoding/json"
	"strings"
)

// sanitizeResponse strips markdown code fences and leading/trailing noise
// from an LLM response so it can be parsed as JSON.
func sanitizeResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeJSONResponse sanitizes and unmarshals an LLM response into out.
func decodeJSONResponse(response string, out any) error {
	return json.Unmarshal([]byte(sanitizeResponse(response)), out)
}
