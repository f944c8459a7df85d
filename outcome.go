// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

/*
Invariants:
 * Every parsing step is a Step: a function from a Cursor to an Outcome.
 * An Outcome is exactly one of
   * matched  - a value plus the Cursor just past what the step consumed
   * no match - the step does not apply here; nothing was consumed
   * fatal    - the input is malformed; carries the *Error to report
 * Steps never mutate their Cursor. Backtracking is reusing the Cursor
   that was passed in.
 * Or only backtracks on no match. A fatal outcome is never turned into
   a no match; it propagates through every combinator unchanged.
*/

type outcomeKind int

const (
	noMatch outcomeKind = iota
	matched
	fatal
)

// Outcome is the result of applying a Step to a Cursor.
// The zero value is a no match.
type Outcome[T any] struct {
	kind  outcomeKind
	value T
	rest  Cursor
	err   *Error
}

// Matched returns an outcome carrying value, with rest as the remaining input.
func Matched[T any](value T, rest Cursor) Outcome[T] {
	return Outcome[T]{kind: matched, value: value, rest: rest}
}

// NoMatch returns the recoverable outcome.
func NoMatch[T any]() Outcome[T] {
	return Outcome[T]{kind: noMatch}
}

// Fatal returns the unrecoverable outcome. err must not be nil.
func Fatal[T any](err *Error) Outcome[T] {
	if err == nil {
		panic("assert(fatal.err != nil)")
	}
	return Outcome[T]{kind: fatal, err: err}
}

func (o Outcome[T]) IsMatched() bool { return o.kind == matched }
func (o Outcome[T]) IsNoMatch() bool { return o.kind == noMatch }
func (o Outcome[T]) IsFatal() bool   { return o.kind == fatal }

// Value returns the matched value, or the zero value of T.
func (o Outcome[T]) Value() T { return o.value }

// Rest returns the cursor after a match. It is meaningless otherwise.
func (o Outcome[T]) Rest() Cursor { return o.rest }

// Err returns the error of a fatal outcome, or nil.
func (o Outcome[T]) Err() *Error { return o.err }

// Step is a single parsing function.
type Step[T any] func(c Cursor) Outcome[T]

// And sequences step and next. On a match, next is called with the value and
// the remaining input. No match and fatal short-circuit.
func And[T, U any](step Step[T], next func(value T, rest Cursor) Outcome[U]) Step[U] {
	return func(c Cursor) Outcome[U] {
		o := step(c)
		switch o.kind {
		case matched:
			return next(o.value, o.rest)
		case fatal:
			return Fatal[U](o.err)
		}
		return NoMatch[U]()
	}
}

// Or tries step, then alt from the same cursor if step did not match.
// A fatal outcome from step is returned without trying alt.
func Or[T any](step, alt Step[T]) Step[T] {
	return func(c Cursor) Outcome[T] {
		if o := step(c); o.kind != noMatch {
			return o
		}
		return alt(c)
	}
}

// Map transforms the value of a match.
func Map[T, U any](step Step[T], f func(T) U) Step[U] {
	return func(c Cursor) Outcome[U] {
		o := step(c)
		switch o.kind {
		case matched:
			return Matched(f(o.value), o.rest)
		case fatal:
			return Fatal[U](o.err)
		}
		return NoMatch[U]()
	}
}

// AnyRune consumes any one codepoint. It does not match at end of input.
func AnyRune(c Cursor) Outcome[rune] {
	r, rest, ok := c.Next()
	if !ok {
		return NoMatch[rune]()
	}
	return Matched(r, rest)
}

// RuneWhere consumes one codepoint that satisfies pred.
func RuneWhere(pred func(rune) bool) Step[rune] {
	return func(c Cursor) Outcome[rune] {
		r, rest, ok := c.Next()
		if !ok || !pred(r) {
			return NoMatch[rune]()
		}
		return Matched(r, rest)
	}
}

// Literal consumes the codepoint want.
func Literal(want rune) Step[rune] {
	return RuneWhere(func(r rune) bool {
		return r == want
	})
}
