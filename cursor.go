// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import "unicode/utf8"

// Cursor pairs the unconsumed input with the position of its first codepoint.
//
// A Cursor is a value. Consuming input never changes a Cursor; it returns
// a new one. That lets every parsing step backtrack by simply reusing the
// Cursor it was given.
type Cursor struct {
	input string // remaining input
	pos   Position
}

// NewCursor returns a cursor at the start of input.
func NewCursor(input string) Cursor {
	return Cursor{input: input, pos: Start()}
}

// Rest returns the unconsumed input.
func (c Cursor) Rest() string {
	return c.input
}

// Position returns the position of the first unconsumed codepoint,
// or the end of input position when AtEnd is true.
func (c Cursor) Position() Position {
	return c.pos
}

// AtEnd reports whether all the input has been consumed.
func (c Cursor) AtEnd() bool {
	return len(c.input) == 0
}

// Peek returns the next codepoint without consuming it, or EOF.
func (c Cursor) Peek() rune {
	r, _ := c.decode()
	return r
}

// Next consumes one codepoint. It returns false (and the same cursor)
// at end of input.
func (c Cursor) Next() (rune, Cursor, bool) {
	r, w := c.decode()
	if w == 0 {
		return EOF, c, false
	}
	return r, Cursor{input: c.input[w:], pos: c.pos.advance(r, w)}, true
}

// decode returns the next rune and its width in bytes, optimizing for ASCII.
// The width is 0 only at end of input.
func (c Cursor) decode() (rune, int) {
	if len(c.input) == 0 {
		return EOF, 0
	}
	if r := rune(c.input[0]); r < utf8.RuneSelf {
		return r, 1
	}
	// the current rune must be decoded
	return utf8.DecodeRuneInString(c.input)
}
