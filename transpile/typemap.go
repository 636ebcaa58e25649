package transpile

import (
	"regexp"
	"strings"
)

// Scalar type sigils map one-to-one.
var scalarTypes = map[string]string{
	"@int":   "i64",
	"@float": "f64",
	"@str":   "String",
	"@bool":  "bool",
}

// mapAnnotation rewrites a type annotation: collection sigils become the
// corresponding Rust container generics, scalars their Rust names.
func mapAnnotation(t string) string {
	t = strings.TrimSpace(t)

	if inner, ok := sigilBody(t, "@list", '[', ']'); ok {
		return "Vec<" + mapAnnotation(inner) + ">"
	}
	if inner, ok := sigilBody(t, "@dict", '[', ']'); ok {
		parts := splitTopLevel(inner, ',')
		if len(parts) == 2 {
			return "HashMap<" + mapAnnotation(parts[0]) + ", " + mapAnnotation(parts[1]) + ">"
		}
		return "HashMap<String, String>"
	}
	if inner, ok := sigilBody(t, "@set", '[', ']'); ok {
		return "HashSet<" + mapAnnotation(inner) + ">"
	}
	switch t {
	case "@list":
		return "Vec<String>"
	case "@dict":
		return "HashMap<String, String>"
	case "@set":
		return "HashSet<String>"
	case "@tuple":
		return ""
	}
	if r, ok := scalarTypes[t]; ok {
		return r
	}
	// Compound annotations with embedded sigils.
	for sigil, rust := range scalarTypes {
		t = strings.ReplaceAll(t, sigil, rust)
	}
	return t
}

// sigilBody extracts the bracketed body of a sigil form like @list[...].
func sigilBody(s, sigil string, open, close byte) (string, bool) {
	if !strings.HasPrefix(s, sigil) || len(s) <= len(sigil) {
		return "", false
	}
	rest := s[len(sigil):]
	if rest[0] != open || rest[len(rest)-1] != close {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{', '<':
			depth++
		case ']', ')', '}', '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))
	return parts
}

var (
	wordNot  = regexp.MustCompile(`\bnot\s+`)
	wordAnd  = regexp.MustCompile(`\band\b`)
	wordOr   = regexp.MustCompile(`\bor\b`)
	wordNone = regexp.MustCompile(`\bNone\b`)

	enumPathRe = regexp.MustCompile(`\b([A-Z]\w*)\.([A-Z]\w*)`)

	atListValRe = regexp.MustCompile(`@list\[`)
	atDictValRe = regexp.MustCompile(`@dict\{`)
	atConvRe    = regexp.MustCompile(`@(int|float|str|bool)\(`)

	rangeTwoRe = regexp.MustCompile(`\brange\(([^(),]+),\s*([^()]+)\)`)
	rangeOneRe = regexp.MustCompile(`\brange\(([^(),]+)\)`)
)

// Method names translated to their Rust container equivalents.
var methodRenames = [][2]string{
	{".add(", ".push("},
	{".append(", ".push("},
	{".has(", ".contains_key("},
	{".has_key(", ".contains_key("},
}

// mapOutsideStrings applies fn to the segments of s that lie outside string
// literals, leaving quoted text untouched.
func mapOutsideStrings(s string, fn func(string) string) string {
	var sb strings.Builder
	var seg strings.Builder
	inQuote := false
	var quote byte

	flush := func() {
		sb.WriteString(fn(seg.String()))
		seg.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
				continue
			}
			if c == quote {
				inQuote = false
			}
			continue
		}
		if c == '"' || c == '\'' {
			flush()
			inQuote = true
			quote = c
			sb.WriteByte(c)
			continue
		}
		seg.WriteByte(c)
	}
	flush()
	return sb.String()
}
