// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import "fmt"

// TokenKind classifies a Token.
type TokenKind int

const (
	TokenUnknown TokenKind = iota

	TokenText          // run of characters that are not control characters
	TokenEscape        // Escape followed by a control character
	TokenInvalidEscape // Escape followed by anything else, or by the end of input
	TokenOpenBracket
	TokenCloseBracket
	TokenBar

	TokenEndOfInput
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"
	case TokenEscape:
		return "Escape"
	case TokenInvalidEscape:
		return "InvalidEscape"
	case TokenOpenBracket:
		return "OpenBracket"
	case TokenCloseBracket:
		return "CloseBracket"
	case TokenBar:
		return "Bar"
	case TokenEndOfInput:
		return "EndOfInput"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a single lexical token from the input.
//
// Tokens are lossless: the lexemes of all tokens from a Lexer, in order,
// concatenate back to the input.
type Token struct {
	Kind TokenKind
	Pos  Position // start of the lexeme
	End  int      // byte offset just past the lexeme
}

// Is reports whether tok.Kind matches the provided kind.
func (tok Token) Is(kind TokenKind) bool {
	return tok.Kind == kind
}

// IsOneOf reports whether tok.Kind matches any of the provided kinds.
func (tok Token) IsOneOf(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// Length is the length of the lexeme, in bytes.
func (tok Token) Length() int {
	return tok.End - tok.Pos.Offset
}

// Lexeme returns the original text of the token.
func (tok Token) Lexeme(input string) string {
	return input[tok.Pos.Offset:tok.End]
}
