// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/mdhender/brackets"
)

// Renderer writes a parsed tree as an indented outline, one node per line:
//
//	text "text"
//	sequence (2)
//	  text "a" |
//	  sequence (0)
type Renderer struct {
	indent  string
	quoted  bool
	summary bool
}

func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		indent: "  ",
		quoted: true,
	}
	for _, option := range options {
		err := option(r)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render writes the outline for seq to w.
func (r *Renderer) Render(w io.Writer, seq brackets.Sequence) error {
	lines := Flatten(seq)
	if len(lines) == 0 {
		if _, err := fmt.Fprintln(w, "(empty)"); err != nil {
			return err
		}
	}
	texts, sequences := 0, 0
	for _, line := range lines {
		prefix := strings.Repeat(r.indent, line.Depth)
		var err error
		switch line.Kind {
		case "text":
			texts++
			content := line.Content
			if r.quoted {
				content = fmt.Sprintf("%q", content)
			}
			if line.Explicit {
				_, err = fmt.Fprintf(w, "%stext %s |\n", prefix, content)
			} else {
				_, err = fmt.Fprintf(w, "%stext %s\n", prefix, content)
			}
		case "sequence":
			sequences++
			_, err = fmt.Fprintf(w, "%ssequence (%d)\n", prefix, line.Children)
		}
		if err != nil {
			return err
		}
	}
	if r.summary {
		_, err := fmt.Fprintf(w, "-- %d texts, %d sequences, depth %d\n", texts, sequences, seq.Depth())
		return err
	}
	return nil
}

// String renders seq to a string.
func (r *Renderer) String(seq brackets.Sequence) string {
	var sb strings.Builder
	_ = r.Render(&sb, seq)
	return sb.String()
}
