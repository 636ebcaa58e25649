package source

import "strings"

// SplitTop splits s on sep at nesting depth zero, respecting brackets and
// both quote styles (backslash escapes honored inside quotes). Empty parts
// are dropped after trimming.
func SplitTop(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	inQuote := false
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' && i+1 < len(s) {
				cur.WriteByte(c)
				i++
				cur.WriteByte(s[i])
				continue
			}
			if c == quote {
				inQuote = false
			}
			cur.WriteByte(c)
			continue
		}
		switch {
		case c == '"' || c == '\'':
			inQuote = true
			quote = c
			cur.WriteByte(c)
		case c == '(' || c == '[' || c == '{':
			depth++
			cur.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			depth--
			cur.WriteByte(c)
		case c == sep && depth == 0:
			if p := strings.TrimSpace(cur.String()); p != "" {
				parts = append(parts, p)
			}
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// AssignIndex returns the index of a top-level assignment '=' in s, or -1.
// Comparison operators (==, !=, <=, >=), match arrows (=>) and anything
// inside quotes or brackets do not qualify.
func AssignIndex(s string) int {
	depth := 0
	inQuote := false
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if c == quote {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth > 0 {
				continue
			}
			if i > 0 {
				switch s[i-1] {
				case '!', '<', '>', '=', '/':
					continue
				}
			}
			if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				continue
			}
			return i
		}
	}
	return -1
}

// ColonIndex returns the index of the first top-level ':' in s, or -1.
// Used to separate a construct header from an inline body.
func ColonIndex(s string) int {
	depth := 0
	inQuote := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if c == quote {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// StripComment removes an unquoted trailing '#' comment from s.
func StripComment(s string) string {
	inQuote := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if c == quote {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quote = c
		case '#':
			return strings.TrimRight(s[:i], " \t")
		}
	}
	return s
}

// ParenBalance returns the number of unclosed '(' in s, counting only
// outside quotes. Negative results mean more closers than openers.
func ParenBalance(s string) int {
	depth := 0
	inQuote := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if c == quote {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}
