// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

// Lexer splits input into tokens for highlighting and debugging.
//
// Unlike the parser, the lexer never fails. Escapes that the parser would
// reject are returned as TokenInvalidEscape and brackets are not matched.
//
// Invariants:
//   - every token has Length() > 0 except TokenEndOfInput
//   - token i+1 starts at token i's End
//   - once the input is consumed, Scan always returns TokenEndOfInput
type Lexer struct {
	c Cursor
}

func NewLexer(input string) *Lexer {
	return &Lexer{c: NewCursor(input)}
}

// Scan returns the next token from the input.
func (l *Lexer) Scan() Token {
	start := l.c.pos
	r, next, ok := l.c.Next()
	if !ok {
		return Token{Kind: TokenEndOfInput, Pos: start, End: start.Offset}
	}

	var kind TokenKind
	switch r {
	case OpenBracket:
		kind, l.c = TokenOpenBracket, next
	case CloseBracket:
		kind, l.c = TokenCloseBracket, next
	case Bar:
		kind, l.c = TokenBar, next
	case Escape:
		escaped, after, ok := next.Next()
		switch {
		case !ok:
			kind, l.c = TokenInvalidEscape, next
		case IsControl(escaped):
			kind, l.c = TokenEscape, after
		default:
			// the escaped character belongs to the bad escape
			kind, l.c = TokenInvalidEscape, after
		}
	default:
		kind, l.c = TokenText, next
		for {
			r, next, ok := l.c.Next()
			if !ok || IsControl(r) {
				break
			}
			l.c = next
		}
	}
	return Token{Kind: kind, Pos: start, End: l.c.pos.Offset}
}

// Tokenize returns every token in input, ending with TokenEndOfInput.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.Scan()
		tokens = append(tokens, tok)
		if tok.Is(TokenEndOfInput) {
			return tokens
		}
	}
}
