// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/mdhender/brackets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) brackets.Text {
	return brackets.Text{Content: s}
}

// textX is a text node that was ended by a '|'.
func textX(s string) brackets.Text {
	return brackets.Text{Content: s, EndedExplicitly: true}
}

func seq(nodes ...brackets.Node) brackets.Sequence {
	return brackets.Sequence{Contents: nodes}
}

func pos(line, column, offset int) brackets.Position {
	return brackets.Position{Line: line, Column: column, Offset: offset}
}

func TestParseSequentialNodes_Empty(t *testing.T) {
	got, err := brackets.ParseSequentialNodes("")
	require.NoError(t, err)
	assert.Equal(t, seq(), got)
	assert.Equal(t, 0, got.Len())
}

func TestParseSequentialNodes_PlainText(t *testing.T) {
	for _, input := range []string{
		"a",
		"hello, world",
		"línea con acentos",
		"日本語のテキスト",
		"line one\nline two\n",
		"tabs\tand\r\ncarriage returns",
		"slash / and colon : are ordinary",
	} {
		got, err := brackets.ParseSequentialNodes(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, seq(text(input)), got, "input %q", input)
	}
}

func TestParseSequentialNodes_PlainTextProperty(t *testing.T) {
	alphabet := []rune("abcXYZ019 \t\n\r.,;:/-_=+()é世🙂")
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		var sb strings.Builder
		n := 1 + rng.Intn(40)
		for j := 0; j < n; j++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		input := sb.String()
		got, err := brackets.ParseSequentialNodes(input)
		require.NoError(t, err, "input %q", input)
		require.Equal(t, seq(text(input)), got, "input %q", input)
	}
}

func TestParseSequentialNodes_LoneBar(t *testing.T) {
	got, err := brackets.ParseSequentialNodes("|")
	require.NoError(t, err)
	assert.Equal(t, seq(textX("")), got)
}

func TestParseSequentialNodes_EmptyBrackets(t *testing.T) {
	got, err := brackets.ParseSequentialNodes("[]")
	require.NoError(t, err)
	assert.Equal(t, seq(seq()), got)
}

func TestParseSequentialNodes_BalancedNesting(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100, brackets.DefaultMaxDepth} {
		input := strings.Repeat("[", n) + strings.Repeat("]", n)
		want := seq()
		for i := 0; i < n; i++ {
			want = seq(want)
		}
		got, err := brackets.ParseSequentialNodes(input)
		require.NoError(t, err, "depth %d", n)
		assert.Equal(t, want, got, "depth %d", n)
		assert.Equal(t, n, got.Depth())
	}
}

func TestParseSequentialNodes_EndToEnd(t *testing.T) {
	got, err := brackets.ParseSequentialNodes("text[a|b[c]|[]d]")
	require.NoError(t, err)
	want := seq(
		text("text"),
		seq(
			textX("a"),
			text("b"),
			seq(text("c")),
			textX(""),
			seq(),
			text("d"),
		),
	)
	assert.Equal(t, want, got)
}

func TestParseSequentialNodes_Examples(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		want  brackets.Sequence
	}{
		{
			name:  "escaped controls inside sequences",
			input: `[some vertical bars: \|\|\|][some brackets: \]\[\[\]]`,
			want: seq(
				seq(text("some vertical bars: |||")),
				seq(text("some brackets: ][[]")),
			),
		},
		{
			name:  "bar splits text",
			input: `first text node|second text node`,
			want:  seq(textX("first text node"), text("second text node")),
		},
		{
			name:  "empty texts from bars",
			input: `[|a[]]|[a||b]`,
			want: seq(
				seq(textX(""), text("a"), seq()),
				textX(""),
				seq(textX("a"), textX(""), text("b")),
			),
		},
		{
			name:  "escaped backslash",
			input: `C:\\temp`,
			want:  seq(text(`C:\temp`)),
		},
		{
			name:  "trailing bar",
			input: `a|`,
			want:  seq(textX("a")),
		},
		{
			name:  "adjacent sequences",
			input: `[a][b][]`,
			want:  seq(seq(text("a")), seq(text("b")), seq()),
		},
		{
			name:  "new-lines are text",
			input: "[a\n]\n[\nb]",
			want:  seq(seq(text("a\n")), text("\n"), seq(text("\nb"))),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := brackets.ParseSequentialNodes(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSequentialNodes_EscapedControlIsLiteral(t *testing.T) {
	for _, c := range []rune{brackets.Escape, brackets.Bar, brackets.OpenBracket, brackets.CloseBracket} {
		input := "[" + string(brackets.Escape) + string(c) + "]"
		got, err := brackets.ParseSequentialNodes(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, seq(seq(text(string(c)))), got, "input %q", input)
	}
}

func TestParseSequentialNodes_Errors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		kind  brackets.ErrorKind
		pos   brackets.Position
		char  rune
	}{
		{name: "unknown escape", input: `a\b`, kind: brackets.UnknownCharacterEscaped, pos: pos(1, 3, 2), char: 'b'},
		{name: "unknown escape in sequence", input: `[a\q]`, kind: brackets.UnknownCharacterEscaped, pos: pos(1, 4, 3), char: 'q'},
		{name: "escaped new-line", input: "a\\\n", kind: brackets.UnknownCharacterEscaped, pos: pos(1, 3, 2), char: '\n'},
		{name: "escape at end", input: `\`, kind: brackets.EscapeAtTheEndOfInput, pos: pos(1, 1, 0)},
		{name: "escape at end after text", input: `abc\`, kind: brackets.EscapeAtTheEndOfInput, pos: pos(1, 4, 3)},
		{name: "escape at end in sequence", input: `[abc\`, kind: brackets.EscapeAtTheEndOfInput, pos: pos(1, 5, 4)},
		{name: "unclosed", input: `a[b`, kind: brackets.UnclosedBracket, pos: pos(1, 2, 1)},
		{name: "unclosed empty", input: `[`, kind: brackets.UnclosedBracket, pos: pos(1, 1, 0)},
		{name: "unclosed outer", input: `[[a]`, kind: brackets.UnclosedBracket, pos: pos(1, 1, 0)},
		{name: "unclosed inner", input: `[[b`, kind: brackets.UnclosedBracket, pos: pos(1, 2, 1)},
		{name: "unexpected close", input: `]`, kind: brackets.UnexpectedClosingBracket, pos: pos(1, 1, 0)},
		{name: "unexpected close after text", input: `abc]`, kind: brackets.UnexpectedClosingBracket, pos: pos(1, 4, 3)},
		{name: "unexpected close mid input", input: `[a]]b`, kind: brackets.UnexpectedClosingBracket, pos: pos(1, 4, 3)},
		{name: "unexpected close after multibyte", input: `héllo]`, kind: brackets.UnexpectedClosingBracket, pos: pos(1, 6, 6)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := brackets.ParseSequentialNodes(tc.input)
			require.Error(t, err)
			assert.Equal(t, seq(), got, "no partial tree on error")

			var perr *brackets.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, tc.pos, perr.Pos)
			assert.Equal(t, tc.char, perr.Char)
		})
	}
}

func TestParseSequentialNodes_RowColumnAfterNewLine(t *testing.T) {
	for _, tc := range []struct {
		input string
		kind  brackets.ErrorKind
		pos   brackets.Position
	}{
		{input: "ab\ncd\\x", kind: brackets.UnknownCharacterEscaped, pos: pos(2, 4, 6)},
		{input: "x\n]", kind: brackets.UnexpectedClosingBracket, pos: pos(2, 1, 2)},
		{input: "first\nsecond\nthi[rd", kind: brackets.UnclosedBracket, pos: pos(3, 4, 16)},
		{input: "[\n\n", kind: brackets.UnclosedBracket, pos: pos(1, 1, 0)},
		{input: "\n\n\\", kind: brackets.EscapeAtTheEndOfInput, pos: pos(3, 1, 2)},
		{input: "a\r\n]", kind: brackets.UnexpectedClosingBracket, pos: pos(2, 1, 3)},
	} {
		_, err := brackets.ParseSequentialNodes(tc.input)
		var perr *brackets.Error
		require.ErrorAs(t, err, &perr, "input %q", tc.input)
		assert.Equal(t, tc.kind, perr.Kind, "input %q", tc.input)
		assert.Equal(t, tc.pos, perr.Pos, "input %q", tc.input)
	}
}

func TestParseSequentialNodes_SentinelErrors(t *testing.T) {
	for input, sentinel := range map[string]error{
		`\`:    brackets.ErrEscapeAtTheEndOfInput,
		`\x`:   brackets.ErrUnknownCharacterEscaped,
		`[`:    brackets.ErrUnclosedBracket,
		`]`:    brackets.ErrUnexpectedClosingBracket,
		`[a]]`: brackets.ErrUnexpectedClosingBracket,
	} {
		_, err := brackets.ParseSequentialNodes(input)
		assert.ErrorIs(t, err, sentinel, "input %q", input)
		for _, other := range []error{brackets.ErrEscapeAtTheEndOfInput, brackets.ErrUnknownCharacterEscaped, brackets.ErrUnclosedBracket, brackets.ErrUnexpectedClosingBracket, brackets.ErrNestingTooDeep} {
			if other != sentinel {
				assert.False(t, errors.Is(err, other), "input %q matched %v", input, other)
			}
		}
	}
}

func TestError_Message(t *testing.T) {
	_, err := brackets.ParseSequentialNodes(`a\b`)
	require.Error(t, err)
	assert.Equal(t, `1:3: unknown character escaped: 'b'`, err.Error())

	_, err = brackets.ParseSequentialNodes("x\n[")
	require.Error(t, err)
	assert.Equal(t, "2:1: unclosed bracket", err.Error())

	assert.Equal(t, "unexpected closing bracket", brackets.ErrUnexpectedClosingBracket.Error())
	assert.Equal(t, "UNCLOSED_BRACKET", brackets.UnclosedBracket.Code())
}

func TestParser_MaxDepth(t *testing.T) {
	p, err := brackets.New(brackets.WithMaxDepth(3))
	require.NoError(t, err)
	assert.Equal(t, 3, p.MaxDepth())

	got, err := p.ParseSequentialNodes("[[[]]]")
	require.NoError(t, err)
	assert.Equal(t, seq(seq(seq(seq()))), got)

	_, err = p.ParseSequentialNodes("a[[[[]]]]")
	var perr *brackets.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, brackets.NestingTooDeep, perr.Kind)
	assert.Equal(t, pos(1, 5, 4), perr.Pos)
	assert.ErrorIs(t, err, brackets.ErrNestingTooDeep)

	// siblings do not add up
	_, err = p.ParseSequentialNodes("[[[]]][[[]]][[[a]b]c]")
	require.NoError(t, err)
}

func TestParser_DefaultMaxDepthExceeded(t *testing.T) {
	n := brackets.DefaultMaxDepth + 1
	input := strings.Repeat("[", n) + strings.Repeat("]", n)
	_, err := brackets.ParseSequentialNodes(input)
	var perr *brackets.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, brackets.NestingTooDeep, perr.Kind)
	assert.Equal(t, pos(1, n, n-1), perr.Pos)
}

func TestParser_InvalidOptions(t *testing.T) {
	_, err := brackets.New(brackets.WithMaxDepth(0))
	assert.Error(t, err)
	_, err = brackets.New(brackets.WithMaxDepth(-5))
	assert.Error(t, err)
}

func TestParseOneNode_EmptyInput(t *testing.T) {
	parsed, err := brackets.ParseOneNode("")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseOneNode_WalksInput(t *testing.T) {
	input := "abc[d]e|f"
	parsed, err := brackets.ParseOneNode(input)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, text("abc"), parsed.Node)
	assert.Equal(t, "[d]e|f", parsed.Rest.Rest())
	assert.Equal(t, pos(1, 4, 3), parsed.Rest.Position())

	var nodes []brackets.Node
	p, err := brackets.New()
	require.NoError(t, err)
	for c := brackets.NewCursor(input); ; {
		parsed, err := p.ParseOneNodeAt(c)
		require.NoError(t, err)
		if parsed == nil {
			assert.True(t, c.AtEnd())
			break
		}
		nodes = append(nodes, parsed.Node)
		c = parsed.Rest
	}
	assert.Equal(t, []brackets.Node{text("abc"), seq(text("d")), textX("e"), text("f")}, nodes)

	whole, err := brackets.ParseSequentialNodes(input)
	require.NoError(t, err)
	assert.Equal(t, whole.Contents, nodes)
}

func TestParseOneNode_Errors(t *testing.T) {
	_, err := brackets.ParseOneNode("]x")
	var perr *brackets.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, brackets.UnexpectedClosingBracket, perr.Kind)
	assert.Equal(t, pos(1, 1, 0), perr.Pos)

	_, err = brackets.ParseOneNode("[a")
	assert.ErrorIs(t, err, brackets.ErrUnclosedBracket)

	_, err = brackets.ParseOneNode(`ok\`)
	assert.ErrorIs(t, err, brackets.ErrEscapeAtTheEndOfInput)
}

func TestParseOneNode_StopsAfterOneNode(t *testing.T) {
	// the trailing ']' is only an error once it is reached
	parsed, err := brackets.ParseOneNode("[a]]")
	require.NoError(t, err)
	assert.Equal(t, seq(text("a")), parsed.Node)
	assert.Equal(t, "]", parsed.Rest.Rest())

	parsed, err = brackets.ParseOneNode("|rest")
	require.NoError(t, err)
	assert.Equal(t, textX(""), parsed.Node)
	assert.Equal(t, pos(1, 2, 1), parsed.Rest.Position())
}
