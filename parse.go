// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package brackets parses a bracket notation into a tree of text runs and
// nested sequences. Four characters are special: '[' and ']' delimit a
// sequence, '|' ends a text run explicitly and '\' escapes any of the four.
package brackets

var (
	defaultParser = &Parser{maxDepth: DefaultMaxDepth}
)

// Parsed is a single node plus the input that follows it.
type Parsed struct {
	Node Node
	Rest Cursor // continue parsing with ParseOneNodeAt(Rest)
}

// ParseSequentialNodes parses the whole input with the default parser.
func ParseSequentialNodes(input string) (Sequence, error) {
	return defaultParser.ParseSequentialNodes(input)
}

// ParseOneNode parses a single node from the start of input with the default parser.
func ParseOneNode(input string) (*Parsed, error) {
	return defaultParser.ParseOneNode(input)
}

// ParseSequentialNodes parses the whole input as a sequence.
//
// It returns either the complete tree or an *Error, never a partial tree.
// Input left over after the sequence stops can only start with a ']'
// that has no matching '[', which is reported as UnexpectedClosingBracket.
func (p *Parser) ParseSequentialNodes(input string) (Sequence, error) {
	o := p.sequence(0)(NewCursor(input))
	if o.IsFatal() {
		return Sequence{}, p.fail(o.Err())
	}
	if rest := o.Rest(); !rest.AtEnd() {
		return Sequence{}, p.fail(newError(UnexpectedClosingBracket, rest.Position()))
	}
	return o.Value(), nil
}

// ParseOneNode parses a single node from the start of input.
//
// It returns nil and no error when input is empty.
func (p *Parser) ParseOneNode(input string) (*Parsed, error) {
	return p.ParseOneNodeAt(NewCursor(input))
}

// ParseOneNodeAt parses a single node starting at c, so that callers can walk
// an input one node at a time:
//
//	for c := brackets.NewCursor(input); ; {
//	    parsed, err := p.ParseOneNodeAt(c)
//	    if err != nil || parsed == nil {
//	        break
//	    }
//	    c = parsed.Rest
//	}
//
// It returns nil and no error when c is at the end of input. Any other input
// that can't start a node starts with an unmatched ']'.
func (p *Parser) ParseOneNodeAt(c Cursor) (*Parsed, error) {
	o := p.node(0)(c)
	switch {
	case o.IsFatal():
		return nil, p.fail(o.Err())
	case o.IsNoMatch():
		if c.AtEnd() {
			return nil, nil
		}
		return nil, p.fail(newError(UnexpectedClosingBracket, c.Position()))
	}
	return &Parsed{Node: o.Value(), Rest: o.Rest()}, nil
}

// fail logs err and returns it as an error interface.
func (p *Parser) fail(err *Error) error {
	p.debug("parse: %v", err)
	return err
}
