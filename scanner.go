// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

// textChar is one classified codepoint of a text run.
type textChar struct {
	r          rune
	terminator bool // true for an unescaped Bar; r is not content then
}

// scanTextChar classifies the next codepoint:
//   - escape pair: matched as the literal control character
//   - Bar: matched as the terminator
//   - brackets and end of input: no match
//   - anything else: matched as content
var scanTextChar = Or[textChar](Or[textChar](scanEscaped, scanTerminator), scanPlain)

var scanTerminator = Map(Literal(Bar), func(r rune) textChar {
	return textChar{r: r, terminator: true}
})

var scanPlain = Map(RuneWhere(isPlain), func(r rune) textChar {
	return textChar{r: r}
})

func isPlain(r rune) bool {
	return !IsControl(r)
}

// scanEscaped consumes an Escape and the control character after it.
// An Escape is always committed: anything other than a control character
// after it is fatal.
func scanEscaped(c Cursor) Outcome[textChar] {
	return And(Literal(Escape), func(_ rune, rest Cursor) Outcome[textChar] {
		r, after, ok := rest.Next()
		if !ok {
			return Fatal[textChar](newError(EscapeAtTheEndOfInput, c.pos))
		}
		if !IsControl(r) {
			err := newError(UnknownCharacterEscaped, rest.pos)
			err.Char = r
			return Fatal[textChar](err)
		}
		return Matched(textChar{r: r}, after)
	})(c)
}
