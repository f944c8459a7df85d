// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package renderer

import "github.com/mdhender/brackets"

// Line is one row of an outline.
type Line struct {
	Depth    int    `json:"depth"`
	Kind     string `json:"kind"`
	Content  string `json:"content,omitempty"`  // text nodes only
	Explicit bool   `json:"explicit,omitempty"` // text nodes only
	Children int    `json:"children,omitempty"` // sequence nodes only
}

// Flatten walks the tree in source order and returns one Line per node.
// The root sequence itself is not included; its children have depth 0.
func Flatten(seq brackets.Sequence) []Line {
	var lines []Line
	var walk func(nodes []brackets.Node, depth int)
	walk = func(nodes []brackets.Node, depth int) {
		for _, n := range nodes {
			switch n := n.(type) {
			case brackets.Text:
				lines = append(lines, Line{Depth: depth, Kind: n.Kind(), Content: n.Content, Explicit: n.EndedExplicitly})
			case brackets.Sequence:
				lines = append(lines, Line{Depth: depth, Kind: n.Kind(), Children: n.Len()})
				walk(n.Contents, depth+1)
			}
		}
	}
	walk(seq.Contents, 0)
	return lines
}
