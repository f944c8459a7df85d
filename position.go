// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import (
	"fmt"
	"unicode/utf8"
)

// Position represents a position in the original input.
// Line and Column are 1-based, Offset is 0-based.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, counted in codepoints
	Offset int // byte index into input of the next unconsumed codepoint
}

// Start returns the position of the first codepoint of any input.
func Start() Position {
	return Position{Line: 1, Column: 1}
}

// Advance returns the position after consuming r.
// Consuming LF moves to column 1 of the next line; anything else moves one column.
func (p Position) Advance(r rune) Position {
	w := utf8.RuneLen(r)
	if w < 0 {
		// invalid runes are decoded from a single byte
		w = 1
	}
	return p.advance(r, w)
}

// advance is Advance for callers that already know the encoded width of r.
func (p Position) advance(r rune, width int) Position {
	p.Offset += width
	if r == LF {
		p.Line++
		p.Column = 1
	} else {
		p.Column++
	}
	return p
}

// IsZero reports whether p is the zero value (not a real position).
func (p Position) IsZero() bool {
	return p == Position{}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
