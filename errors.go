// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import "fmt"

// ErrorKind identifies why a parse failed.
type ErrorKind int

const (
	UnknownError ErrorKind = iota

	// EscapeAtTheEndOfInput is an Escape with nothing after it.
	// The position is the position of the Escape.
	EscapeAtTheEndOfInput

	// UnknownCharacterEscaped is an Escape followed by a character that is
	// not a control character. The position is that of the escaped character.
	UnknownCharacterEscaped

	// UnclosedBracket is an OpenBracket with no matching CloseBracket.
	// The position is that of the OpenBracket.
	UnclosedBracket

	// UnexpectedClosingBracket is a CloseBracket with no matching OpenBracket.
	// It is only reported at the top level.
	UnexpectedClosingBracket

	// NestingTooDeep is an OpenBracket that would nest sequences deeper
	// than the parser allows. The position is that of the OpenBracket.
	NestingTooDeep
)

func (k ErrorKind) String() string {
	switch k {
	case EscapeAtTheEndOfInput:
		return "escape at the end of input"
	case UnknownCharacterEscaped:
		return "unknown character escaped"
	case UnclosedBracket:
		return "unclosed bracket"
	case UnexpectedClosingBracket:
		return "unexpected closing bracket"
	case NestingTooDeep:
		return "nesting too deep"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Code returns a stable identifier for the kind, suitable for storage.
func (k ErrorKind) Code() string {
	switch k {
	case EscapeAtTheEndOfInput:
		return "ESCAPE_AT_END_OF_INPUT"
	case UnknownCharacterEscaped:
		return "UNKNOWN_CHARACTER_ESCAPED"
	case UnclosedBracket:
		return "UNCLOSED_BRACKET"
	case UnexpectedClosingBracket:
		return "UNEXPECTED_CLOSING_BRACKET"
	case NestingTooDeep:
		return "NESTING_TOO_DEEP"
	}
	return "UNKNOWN"
}

// Error is the error returned by every parse entry point.
type Error struct {
	Kind ErrorKind
	Pos  Position // where the problem was detected
	Char rune     // the escaped character for UnknownCharacterEscaped, else 0
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrEscapeAtTheEndOfInput    = &Error{Kind: EscapeAtTheEndOfInput}
	ErrUnknownCharacterEscaped  = &Error{Kind: UnknownCharacterEscaped}
	ErrUnclosedBracket          = &Error{Kind: UnclosedBracket}
	ErrUnexpectedClosingBracket = &Error{Kind: UnexpectedClosingBracket}
	ErrNestingTooDeep           = &Error{Kind: NestingTooDeep}
)

func newError(kind ErrorKind, pos Position) *Error {
	return &Error{Kind: kind, Pos: pos}
}

func (e *Error) Error() string {
	if e.Pos.IsZero() {
		return e.Kind.String()
	}
	if e.Kind == UnknownCharacterEscaped {
		return fmt.Sprintf("%d:%d: %s: %q", e.Pos.Line, e.Pos.Column, e.Kind, e.Char)
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Kind)
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Pos.IsZero() && t.Kind == e.Kind
}
