// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import (
	"encoding/json"
	"fmt"
)

// Node is the interface implemented by the two kinds of tree nodes,
// Text and Sequence.
//
// Kind returns a short, stable identifier for the node type, either
// "text" or "sequence". It is also the "kind" field of the JSON encoding.
type Node interface {
	Kind() string

	// node is unexported so that only this package can add node types.
	node()
}

// Text is a run of ordinary (or escaped) characters.
//
// EndedExplicitly is true when the run was terminated by a Bar, which is
// consumed but not part of Content. It is false when the run stopped at a
// bracket or the end of input.
type Text struct {
	Content         string
	EndedExplicitly bool
}

func (Text) Kind() string { return "text" }
func (Text) node()        {}

func (t Text) String() string {
	if t.EndedExplicitly {
		return fmt.Sprintf("Text(%q, |)", t.Content)
	}
	return fmt.Sprintf("Text(%q)", t.Content)
}

// Sequence is the node produced by a balanced pair of brackets.
// It is also the result of parsing a whole input.
//
// Contents are in source order. An empty sequence has nil Contents.
type Sequence struct {
	Contents []Node
}

func (Sequence) Kind() string { return "sequence" }
func (Sequence) node()        {}

// Len returns the number of direct children.
func (s Sequence) Len() int {
	return len(s.Contents)
}

// Depth returns the deepest bracket nesting below s.
// A sequence with no child sequences has depth 0.
func (s Sequence) Depth() int {
	depth := 0
	for _, ch := range s.Contents {
		if sub, ok := ch.(Sequence); ok {
			depth = max(depth, sub.Depth()+1)
		}
	}
	return depth
}

// Texts returns the text nodes of s and all of its descendants, in source order.
func (s Sequence) Texts() []Text {
	var list []Text
	for _, ch := range s.Contents {
		switch ch := ch.(type) {
		case Text:
			list = append(list, ch)
		case Sequence:
			list = append(list, ch.Texts()...)
		}
	}
	return list
}

type textJSON struct {
	Kind     string `json:"kind"`
	Content  string `json:"content"`
	Explicit bool   `json:"explicit"`
}

type sequenceJSON struct {
	Kind     string `json:"kind"`
	Contents []Node `json:"contents"`
}

// rawJSON accepts either node encoding.
type rawJSON struct {
	Kind     string            `json:"kind"`
	Content  string            `json:"content"`
	Explicit bool              `json:"explicit"`
	Contents []json.RawMessage `json:"contents"`
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(textJSON{Kind: t.Kind(), Content: t.Content, Explicit: t.EndedExplicitly})
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	contents := s.Contents
	if contents == nil {
		contents = []Node{}
	}
	return json.Marshal(sequenceJSON{Kind: s.Kind(), Contents: contents})
}

// DecodeJSON rebuilds a node from its JSON encoding.
func DecodeJSON(data []byte) (Node, error) {
	var raw rawJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Kind {
	case "text":
		return Text{Content: raw.Content, EndedExplicitly: raw.Explicit}, nil
	case "sequence":
		var seq Sequence
		for i, msg := range raw.Contents {
			ch, err := DecodeJSON(msg)
			if err != nil {
				return nil, fmt.Errorf("contents[%d]: %w", i, err)
			}
			seq.Contents = append(seq.Contents, ch)
		}
		return seq, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", raw.Kind)
}

// DecodeSequenceJSON rebuilds a sequence from its JSON encoding.
func DecodeSequenceJSON(data []byte) (Sequence, error) {
	n, err := DecodeJSON(data)
	if err != nil {
		return Sequence{}, err
	}
	seq, ok := n.(Sequence)
	if !ok {
		return Sequence{}, fmt.Errorf("expected sequence, got %s", n.Kind())
	}
	return seq, nil
}
