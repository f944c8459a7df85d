// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/config"
	"github.com/spf13/cobra"
)

var (
	// cfg is loaded by the root command before any sub-command runs.
	cfg = config.Default()
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().StringP("config-file", "c", "", "load configuration from file (.toml or .yaml)")
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", true, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "brackets",
		Short: "Bracket notation command line utility",
		Long:  `Parse bracket notation interactively, from files, or through a document pipeline`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags || logFlags == 0 {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("brackets: version %q\n", brackets.Version().Core())
			}

			if configFile, _ := cmd.Flags().GetString("config-file"); configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
				if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
					log.Printf("config: loaded %s\n", configFile)
				}
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdREPL())
	cmdRoot.AddCommand(cmdParse())
	cmdRoot.AddCommand(cmdDB())
	cmdRoot.AddCommand(cmdIngest())
	cmdRoot.AddCommand(cmdWork())
	cmdRoot.AddCommand(cmdFailed())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a debug logger for the library packages when --debug is set.
func newLogger(cmd *cobra.Command) *slog.Logger {
	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newParser builds a parser from the configuration, letting --max-depth override it.
func newParser(cmd *cobra.Command) (*brackets.Parser, error) {
	depth := cfg.Parser.MaxDepth
	if cmd.Flags().Changed("max-depth") {
		depth, _ = cmd.Flags().GetInt("max-depth")
	}
	options := []brackets.Option{brackets.WithMaxDepth(depth)}
	if logger := newLogger(cmd); logger != nil {
		options = append(options, brackets.WithLogger(logger))
	}
	return brackets.New(options...)
}

func addMaxDepthFlag(cmd *cobra.Command) {
	cmd.Flags().Int("max-depth", brackets.DefaultMaxDepth, "maximum bracket nesting (overrides parser.max_depth)")
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(brackets.Version().String())
				return nil
			}
			fmt.Println(brackets.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
