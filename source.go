// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import "strings"

// Source returns the notation for nodes, escaping control characters in text.
// Sequences are wrapped in brackets. To get the notation for a whole parsed
// input, pass its contents:
//
//	src := brackets.Source(seq.Contents...)
//
// For any tree returned by ParseSequentialNodes, parsing that src again
// returns an equal tree.
func Source(nodes ...Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		writeSource(&sb, n)
	}
	return sb.String()
}

// EscapeText returns s with every control character escaped.
func EscapeText(s string) string {
	var sb strings.Builder
	writeEscaped(&sb, s)
	return sb.String()
}

func writeSource(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case Text:
		writeEscaped(sb, n.Content)
		if n.EndedExplicitly {
			sb.WriteRune(Bar)
		}
	case Sequence:
		sb.WriteRune(OpenBracket)
		for _, ch := range n.Contents {
			writeSource(sb, ch)
		}
		sb.WriteRune(CloseBracket)
	}
}

func writeEscaped(sb *strings.Builder, s string) {
	for _, r := range s {
		if IsControl(r) {
			sb.WriteRune(Escape)
		}
		sb.WriteRune(r)
	}
}
