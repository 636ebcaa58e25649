// Package source provides the logical-line model shared by the GUL
// interpreter and transpiler: indentation math, block-extent scanning, and
// the nesting-aware splitters both systems depend on.
package source

import "strings"

// Line is one logical line of GUL source. There is no persistent token
// stream; the line is the unit everything else works on.
type Line struct {
	Text     string // raw text, without trailing newline
	Stripped string // Text with surrounding whitespace removed
	Indent   int    // count of leading space/tab characters
	Num      int    // 1-based line number
}

// Blank reports whether the line contains only whitespace.
func (l Line) Blank() bool {
	return l.Stripped == ""
}

// IsComment reports whether the line is a comment-only line.
func (l Line) IsComment() bool {
	return strings.HasPrefix(l.Stripped, "#")
}

// Skippable reports whether the line carries no code.
func (l Line) Skippable() bool {
	return l.Blank() || l.IsComment()
}

// Split breaks src into logical lines.
func Split(src string) []Line {
	raw := strings.Split(src, "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		text = strings.TrimSuffix(text, "\r")
		stripped := strings.TrimSpace(text)
		indent := 0
		for indent < len(text) && (text[indent] == ' ' || text[indent] == '\t') {
			indent++
		}
		lines[i] = Line{Text: text, Stripped: stripped, Indent: indent, Num: i + 1}
	}
	return lines
}

// BlockEnd scans forward from the construct at start and returns the index
// of the first following line whose indent is less than or equal to the
// construct's own. Blank and comment-only lines never terminate a block.
func BlockEnd(lines []Line, start int) int {
	base := lines[start].Indent
	i := start + 1
	for i < len(lines) {
		l := lines[i]
		if !l.Skippable() && l.Indent <= base {
			break
		}
		i++
	}
	return i
}
