package interpreter

import (
	"encoding/json"
	"strings"
)

// extractJSON returns the JSON object embedded in a completion. A fenced code
// block wins over a bare object; an empty string means nothing was found.
func extractJSON(s string) string {
	if block := extractJSONBlock(s); block != "" {
		if obj := extractJSONObject(block); obj != "" {
			return obj
		}
	}
	return extractJSONObject(s)
}

func extractJSONBlock(s string) string {
	open := strings.Index(s, "```")
	if open == -1 {
		return ""
	}
	rest := s[open+3:]

	// Skip the info string (```json) up to the end of the fence line.
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return ""
	}
	rest = rest[nl+1:]

	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// extractJSONObject returns the first balanced {...} substring that parses as
// JSON, trying each opening brace in turn. Braces inside string literals are
// ignored.
func extractJSONObject(s string) string {
	for offset := 0; offset < len(s); {
		i := strings.IndexByte(s[offset:], '{')
		if i == -1 {
			return ""
		}
		start := offset + i
		if candidate := balancedObject(s[start:]); candidate != "" && json.Valid([]byte(candidate)) {
			return candidate
		}
		offset = start + 1
	}
	return ""
}

// balancedObject returns the prefix of s, which starts with '{', up to its
// matching close brace.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
