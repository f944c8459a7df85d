// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/mdhender/brackets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintDiagnostic(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{
			input: "a[b",
			want: "input:1:2: ERROR: unclosed bracket\n" +
				"    a[b\n" +
				"     ^\n" +
				"    note: this '[' is never closed\n",
		},
		{
			input: "ab\ncd\\x",
			want: "input:2:4: ERROR: unknown character escaped: 'x'\n" +
				"    cd\\x\n" +
				"       ^\n" +
				"    note: only \\\\, \\|, \\[ and \\] are valid escapes\n",
		},
		{
			input: "\t]",
			want: "input:1:2: ERROR: unexpected closing bracket\n" +
				"    \t]\n" +
				"    \t^\n" +
				"    note: use \\] for a literal closing bracket\n",
		},
		{
			input: "abc\\",
			want: "input:1:4: ERROR: escape at the end of input\n" +
				"    abc\\\n" +
				"       ^\n" +
				"    note: escape the backslash itself with \\\\\n",
		},
	} {
		_, err := brackets.ParseSequentialNodes(tc.input)
		require.Error(t, err)
		diag, ok := brackets.NewDiagnostic(err)
		require.True(t, ok)

		var buf bytes.Buffer
		brackets.PrintDiagnostic(&buf, diag, "input", tc.input)
		assert.Equal(t, tc.want, buf.String(), "input %q", tc.input)
	}
}

func TestNewDiagnostic_WrappedError(t *testing.T) {
	_, err := brackets.ParseSequentialNodes("[")
	require.Error(t, err)

	diag, ok := brackets.NewDiagnostic(fmt.Errorf("line 7: %w", err))
	require.True(t, ok)
	assert.Equal(t, "UNCLOSED_BRACKET", diag.Code)
	assert.Equal(t, brackets.Position{Line: 1, Column: 1}, diag.Pos)

	_, ok = brackets.NewDiagnostic(fmt.Errorf("not a parse error"))
	assert.False(t, ok)
}
