package source

import "strings"

// BlockTracker derives block boundaries from indentation alone. Feeding it
// lines in order yields, per line, the blocks the line closes and whether it
// opens a new one. A frame closes when a non-blank line arrives at an indent
// less than or equal to the frame's opening indent; the same-depth rule lets
// a sibling close the previous block. Continuation lines inside an open
// parenthesized argument list never open or close anything.
type BlockTracker struct {
	stack      []int
	parenDepth int
}

// NewBlockTracker returns an empty tracker.
func NewBlockTracker() *BlockTracker {
	return &BlockTracker{}
}

// Depth returns the number of currently open blocks.
func (t *BlockTracker) Depth() int {
	return len(t.stack)
}

// InContinuation reports whether the tracker is inside an unclosed
// parenthesized region spanning multiple lines.
func (t *BlockTracker) InContinuation() bool {
	return t.parenDepth > 0
}

// Feed processes one line. closed holds the opening indents of every block
// the line closed, innermost first; opened reports whether the line opens a
// new block.
func (t *BlockTracker) Feed(l Line) (closed []int, opened bool) {
	if l.Skippable() {
		return nil, false
	}

	if t.parenDepth > 0 {
		t.parenDepth += ParenBalance(l.Stripped)
		if t.parenDepth < 0 {
			t.parenDepth = 0
		}
		return nil, false
	}

	for len(t.stack) > 0 && t.stack[len(t.stack)-1] >= l.Indent {
		closed = append(closed, t.stack[len(t.stack)-1])
		t.stack = t.stack[:len(t.stack)-1]
	}

	code := StripComment(l.Stripped)
	t.parenDepth += ParenBalance(code)
	if t.parenDepth < 0 {
		t.parenDepth = 0
	}

	if strings.HasSuffix(code, ":") || strings.HasSuffix(code, "{") {
		t.stack = append(t.stack, l.Indent)
		opened = true
	}
	return closed, opened
}

// Finish force-closes every block still open at end of input, innermost
// first.
func (t *BlockTracker) Finish() []int {
	var closed []int
	for i := len(t.stack) - 1; i >= 0; i-- {
		closed = append(closed, t.stack[i])
	}
	t.stack = t.stack[:0]
	t.parenDepth = 0
	return closed
}
