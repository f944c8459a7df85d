// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package brackets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Diagnostic represents a parse error or warning with a position
// in the original source.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Code     string     // "UNCLOSED_BRACKET"
	Message  string     // "unclosed bracket"
	Pos      Position   // where in the input it occurred
	Notes    []string   // optional additional help messages
}

// NewDiagnostic converts err into a Diagnostic. It returns false if err
// is not (and does not wrap) an *Error.
func NewDiagnostic(err error) (Diagnostic, bool) {
	var perr *Error
	if !errors.As(err, &perr) {
		return Diagnostic{}, false
	}
	diag := Diagnostic{
		Severity: slog.LevelError,
		Code:     perr.Kind.Code(),
		Message:  perr.Kind.String(),
		Pos:      perr.Pos,
	}
	switch perr.Kind {
	case EscapeAtTheEndOfInput:
		diag.Notes = append(diag.Notes, `escape the backslash itself with \\`)
	case UnknownCharacterEscaped:
		diag.Message = fmt.Sprintf("%s: %q", diag.Message, perr.Char)
		diag.Notes = append(diag.Notes, `only \\, \|, \[ and \] are valid escapes`)
	case UnclosedBracket:
		diag.Notes = append(diag.Notes, "this '[' is never closed")
	case UnexpectedClosingBracket:
		diag.Notes = append(diag.Notes, `use \] for a literal closing bracket`)
	case NestingTooDeep:
		diag.Notes = append(diag.Notes, "reduce the nesting or raise the parser's max depth")
	}
	return diag, true
}

// PrintDiagnostic writes the header, the source line and a caret under
// the column of the diagnostic:
//
//	input:1:2: ERROR: unclosed bracket
//	    a[b
//	     ^
//	    note: this '[' is never closed
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src string) {
	// Header: file:line:column: error: message
	_, _ = fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		filename, diag.Pos.Line, diag.Pos.Column,
		diag.Severity.String(), diag.Message)

	line := findLine(src, diag.Pos.Offset)
	_, _ = fmt.Fprintf(w, "    %s\n", line)

	// caret underline
	_, _ = fmt.Fprintf(w, "    %s^\n", caretPadding(line, diag.Pos.Column))

	// Notes
	for _, note := range diag.Notes {
		_, _ = fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// findLine returns the line containing the byte at offset, without the
// new-line. An offset at the end of src returns the last line.
func findLine(src string, offset int) string {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := strings.IndexByte(src[lineStart:], '\n')
	if lineEnd < 0 {
		return src[lineStart:]
	}
	return src[lineStart : lineStart+lineEnd]
}

// caretPadding returns the blanks that put a caret under the given 1-based
// column of line. Tabs are kept so the caret lines up when the terminal
// expands them.
func caretPadding(line string, column int) string {
	var sb strings.Builder
	for _, r := range line {
		if column <= 1 {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		column--
	}
	// the column can be one past the end of the line
	for ; column > 1; column-- {
		sb.WriteByte(' ')
	}
	return sb.String()
}
