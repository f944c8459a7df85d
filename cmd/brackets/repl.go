// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/renderer"
	"github.com/spf13/cobra"
)

func cmdREPL() *cobra.Command {
	noColor := false
	echo := false
	showJSON := false
	addFlags := func(cmd *cobra.Command) error {
		addMaxDepthFlag(cmd)
		cmd.Flags().BoolVar(&echo, "echo", echo, "echo each line with syntax highlighting")
		cmd.Flags().BoolVar(&noColor, "no-color", noColor, "disable colored output")
		cmd.Flags().BoolVar(&showJSON, "json", showJSON, "print trees as JSON instead of an outline")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "repl",
		Short:        "read lines of notation and print each parse",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser(cmd)
			if err != nil {
				return err
			}
			r, err := renderer.New()
			if err != nil {
				return err
			}
			loop := &repl{
				parser:   p,
				renderer: r,
				in:       bufio.NewReader(os.Stdin),
				out:      os.Stdout,
				colors:   !noColor && !color.NoColor,
				echo:     echo,
				json:     showJSON,
			}
			return loop.run()
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// repl reads one line at a time, parses it and prints the result.
type repl struct {
	parser   *brackets.Parser
	renderer *renderer.Renderer
	in       *bufio.Reader
	out      io.Writer
	colors   bool
	echo     bool
	json     bool
}

const prompt = "> "

// run loops until the input is exhausted. A final line without a
// new-line is still parsed.
func (r *repl) run() error {
	for {
		if _, err := fmt.Fprint(r.out, prompt); err != nil {
			return err
		}
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		atEOF := err != nil
		if atEOF && line == "" {
			_, err = fmt.Fprintln(r.out)
			return err
		}
		if err := r.eval(strings.TrimSuffix(line, "\n")); err != nil {
			return err
		}
		if atEOF {
			return nil
		}
	}
}

func (r *repl) eval(line string) error {
	if r.echo {
		if _, err := fmt.Fprintln(r.out, r.highlight(line)); err != nil {
			return err
		}
	}
	seq, err := r.parser.ParseSequentialNodes(line)
	if err != nil {
		diag, ok := brackets.NewDiagnostic(err)
		if !ok {
			return err
		}
		r.printDiagnostic(diag, line)
		return nil
	}
	if r.json {
		data, err := seq.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.out, "%s\n", data)
		return err
	}
	return r.renderer.Render(r.out, seq)
}

// highlight colors the tokens of line.
func (r *repl) highlight(line string) string {
	bracket := color.New(color.FgYellow, color.Bold)
	bar := color.New(color.FgMagenta)
	escape := color.New(color.FgCyan)
	invalid := color.New(color.FgRed, color.Underline)
	for _, c := range []*color.Color{bracket, bar, escape, invalid} {
		if r.colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var sb strings.Builder
	for _, tok := range brackets.Tokenize(line) {
		lexeme := tok.Lexeme(line)
		switch tok.Kind {
		case brackets.TokenOpenBracket, brackets.TokenCloseBracket:
			sb.WriteString(bracket.Sprint(lexeme))
		case brackets.TokenBar:
			sb.WriteString(bar.Sprint(lexeme))
		case brackets.TokenEscape:
			sb.WriteString(escape.Sprint(lexeme))
		case brackets.TokenInvalidEscape:
			sb.WriteString(invalid.Sprint(lexeme))
		default:
			sb.WriteString(lexeme)
		}
	}
	return sb.String()
}

// printDiagnostic colors the header red, the caret green and the notes cyan.
func (r *repl) printDiagnostic(diag brackets.Diagnostic, line string) {
	header := color.New(color.FgRed, color.Bold)
	caret := color.New(color.FgGreen, color.Bold)
	note := color.New(color.FgCyan)
	for _, c := range []*color.Color{header, caret, note} {
		if r.colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var buf bytes.Buffer
	brackets.PrintDiagnostic(&buf, diag, "input", line)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for i, text := range lines {
		switch {
		case i == 0:
			header.Fprintln(r.out, text)
		case i == 2:
			caret.Fprintln(r.out, text)
		case i > 2:
			note.Fprintln(r.out, text)
		default:
			fmt.Fprintln(r.out, text)
		}
	}
}
