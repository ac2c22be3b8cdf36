package analyzer

import (
	"encoding/json"
	"strings"
)

// repairPartialJSON turns a truncated JSON document into the largest valid
// prefix it can: the input is cut back to a point where a value just closed,
// any dangling comma is dropped, and the still-open strings, objects and
// arrays are closed. Returns false when no valid prefix exists yet.
func repairPartialJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// Stable points: positions just after a closing quote, brace or bracket.
	var stable []int
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				stable = append(stable, i+1)
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
			stable = append(stable, i+1)
		}
	}

	if len(stack) == 0 && !inString && json.Valid([]byte(s)) {
		return s, true
	}

	// Try the most recent stable points first; closing at some of them yields
	// invalid JSON (e.g. an object key with no value), so verify each attempt.
	const maxAttempts = 24
	for n, tried := len(stable)-1, 0; n >= 0 && tried < maxAttempts; n, tried = n-1, tried+1 {
		candidate := closeAt(s, stable[n])
		if candidate != "" && json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// closeAt truncates s at the given offset, strips a trailing comma, and
// appends the closers for whatever is still open.
func closeAt(s string, offset int) string {
	prefix := strings.TrimRight(s[:offset], " \t\r\n")
	prefix = strings.TrimSuffix(prefix, ",")

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return ""
			}
			stack = stack[:len(stack)-1]
		}
	}
	if inString {
		return ""
	}

	var b strings.Builder
	b.WriteString(prefix)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
