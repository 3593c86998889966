package llm

import (
	"regexp"
	"strings"
)

// fenceRE matches a markdown code fence, tagged (```json) or bare (```),
// capturing the content between the fences.
var fenceRE = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// ExtractJSONObject locates a JSON object in free-form agent text.
func ExtractJSONObject(text string) string {
	return extractJSON(text, '{', '}')
}

// ExtractJSONArray locates a JSON array in free-form agent text.
func ExtractJSONArray(text string) string {
	return extractJSON(text, '[', ']')
}

// extractJSON pulls the expected JSON value out of text that may wrap it in
// explanatory prose or code fences. Fenced blocks win over bare bracket
// matching: agents routinely put brackets in the surrounding prose, so the
// first fence whose trimmed content starts with the expected opening
// bracket is taken. The fallback is the greedy span from the first opening
// to the last closing bracket. Returns "" when nothing JSON-shaped exists.
func extractJSON(text string, open, closing byte) string {
	for _, match := range fenceRE.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(match[1])
		if len(candidate) > 0 && candidate[0] == open {
			return candidate
		}
	}

	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

// Excerpt bounds a raw response for log output.
func Excerpt(raw string) string {
	return truncate(raw, 200)
}
