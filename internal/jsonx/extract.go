// Package jsonx extracts JSON objects from LLM responses that wrap them in
// prose or markdown code fences.
package jsonx

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractObject returns the first balanced JSON object found in text. Brace
// counting skips braces inside string literals, including escaped quotes.
func ExtractObject(text string) (string, error) {
	text = StripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", eris.New("jsonx: no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", eris.New("jsonx: unbalanced JSON object")
}

// StripFences removes markdown code fences wrapping a response.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
