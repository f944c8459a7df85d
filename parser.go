// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import (
	"fmt"
	"log/slog"
	"strings"
)

/*
Grammar:

	sequence  ::= node*
	node      ::= text | '[' ( ']' | sequence ']' )
	text      ::= textChar+
	textChar  ::= '\' ( '\' | '|' | '[' | ']' )
	            | '|'
	            | any character except '[' ']' '|' '\'

node is the only recursive rule. The depth passed to sequence and node
is the number of brackets that are open around them.
*/

// Parser holds the settings for parsing. It has no other state and is
// safe to use from multiple goroutines.
type Parser struct {
	maxDepth int
	logger   *slog.Logger
}

// New returns a parser with DefaultMaxDepth and no logging, adjusted by options.
func New(options ...Option) (*Parser, error) {
	p := &Parser{
		maxDepth: DefaultMaxDepth,
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MaxDepth returns the nesting limit.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// parseText accepts a maximal run of text characters.
//
// A Bar ends the run and is consumed. A bracket or the end of input ends the
// run without being consumed, and if nothing was collected by then there is
// no text node at all.
func parseText(c Cursor) Outcome[Text] {
	var sb strings.Builder
	for {
		o := scanTextChar(c)
		switch {
		case o.IsFatal():
			return Fatal[Text](o.Err())
		case o.IsNoMatch():
			if sb.Len() == 0 {
				return NoMatch[Text]()
			}
			return Matched(Text{Content: sb.String()}, c)
		}
		tc := o.Value()
		if tc.terminator {
			return Matched(Text{Content: sb.String(), EndedExplicitly: true}, o.Rest())
		}
		sb.WriteRune(tc.r)
		c = o.Rest()
	}
}

// sequence applies node until it stops matching. A sequence always matches,
// possibly with no contents.
func (p *Parser) sequence(depth int) Step[Sequence] {
	node := p.node(depth)
	return func(c Cursor) Outcome[Sequence] {
		var seq Sequence
		for {
			o := node(c)
			if o.IsFatal() {
				return Fatal[Sequence](o.Err())
			} else if o.IsNoMatch() {
				return Matched(seq, c)
			}
			seq.Contents = append(seq.Contents, o.Value())
			c = o.Rest()
		}
	}
}

// node tries text first, then a bracketed sequence.
func (p *Parser) node(depth int) Step[Node] {
	text := Map[Text, Node](parseText, func(t Text) Node {
		return t
	})
	return Or(text, p.bracketed(depth))
}

// bracketed accepts '[' followed by either ']' or a sequence and ']'.
// Once the '[' is consumed, failing to find the ']' is fatal.
func (p *Parser) bracketed(depth int) Step[Node] {
	return func(c Cursor) Outcome[Node] {
		return And(Literal(OpenBracket), func(_ rune, inner Cursor) Outcome[Node] {
			if depth >= p.maxDepth {
				p.debug("bracketed: %s: depth %d exceeds %d", c.pos, depth+1, p.maxDepth)
				return Fatal[Node](newError(NestingTooDeep, c.pos))
			}
			empty := Map(Literal(CloseBracket), func(rune) Node {
				return Sequence{}
			})
			filled := And(p.sequence(depth+1), func(seq Sequence, rest Cursor) Outcome[Node] {
				closing := Literal(CloseBracket)(rest)
				if !closing.IsMatched() {
					return Fatal[Node](newError(UnclosedBracket, c.pos))
				}
				return Matched[Node](seq, closing.Rest())
			})
			return Or(empty, filled)(inner)
		})(c)
	}
}

func (p *Parser) debug(format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Debug(fmt.Sprintf(format, args...))
}
