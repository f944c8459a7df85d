// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/renderer"
	"github.com/spf13/cobra"
)

func cmdParse() *cobra.Command {
	var expr string
	var format = "outline"
	var outputFile string
	showSummary := false
	addFlags := func(cmd *cobra.Command) error {
		addMaxDepthFlag(cmd)
		cmd.Flags().StringVarP(&expr, "expr", "e", expr, "parse this text instead of a file")
		cmd.Flags().StringVarP(&format, "format", "f", format, "output format: outline, json, source or tokens")
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save parse to file")
		cmd.Flags().BoolVar(&showSummary, "summary", showSummary, "add a summary line to the outline")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "parse [<notation-file>]",
		Short:        "parse a notation file",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")

			var name, src string
			switch {
			case expr != "" && len(args) != 0:
				return fmt.Errorf("--expr and a file are mutually exclusive")
			case expr != "":
				name, src = "expr", expr
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				name, src = args[0], string(data)
			default:
				return fmt.Errorf("missing input: give a file or --expr")
			}

			if format == "tokens" {
				// the lexer never fails, so this works on input that does not parse
				data := formatTokens(name, src)
				if outputFile == "" {
					fmt.Print(string(data))
					return nil
				}
				return os.WriteFile(outputFile, data, 0o644)
			}

			p, err := newParser(cmd)
			if err != nil {
				return err
			}
			seq, err := p.ParseSequentialNodes(src)
			if err != nil {
				if diag, ok := brackets.NewDiagnostic(err); ok {
					brackets.PrintDiagnostic(os.Stderr, diag, name, src)
				}
				return err
			}

			var data []byte
			switch format {
			case "outline":
				r, err := renderer.New(renderer.WithSummary(showSummary))
				if err != nil {
					return err
				}
				data = []byte(r.String(seq))
			case "json":
				if data, err = json.MarshalIndent(seq, "", "  "); err != nil {
					return err
				}
				data = append(data, '\n')
			case "source":
				data = []byte(brackets.Source(seq.Contents...) + "\n")
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if outputFile == "" {
				fmt.Print(string(data))
			} else if err = os.WriteFile(outputFile, data, 0o644); err != nil {
				return err
			} else if !quiet {
				log.Printf("%s: wrote %d bytes\n", outputFile, len(data))
			}

			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// formatTokens lists one token per line with its position and lexeme.
func formatTokens(name, src string) []byte {
	var sb strings.Builder
	for n, tok := range brackets.Tokenize(src) {
		fmt.Fprintf(&sb, "%-35s %5d %-20s %q\n", fmt.Sprintf("%s:%d:%d:", name, tok.Pos.Line, tok.Pos.Column), n+1, tok.Kind, tok.Lexeme(src))
	}
	return []byte(sb.String())
}
