// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"log"

	store "github.com/mdhender/brackets/stores/sqlite"
	"github.com/spf13/cobra"
)

func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "SQLite database file path (overrides store.path; empty = in-memory)")
}

// dbPath returns --db if it was given, otherwise the configured store path.
func dbPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("db") {
		path, _ := cmd.Flags().GetString("db")
		return path
	}
	return cfg.Store.Path
}

// openStore opens the configured database. Without a path the store is
// in-memory and lives only as long as the command.
func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	path := dbPath(cmd)
	if path == "" {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.Printf("store: using in-memory SQLite\n")
		}
		return store.NewSQLiteStore()
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.Printf("store: using file-based SQLite: %s\n", path)
	}
	return store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path})
}

func cmdDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "db",
		Short: "manage the document database",
	}
	cmd.AddCommand(cmdDBInit())
	cmd.AddCommand(cmdDBCompact())
	return cmd
}

func cmdDBInit() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "init",
		Short:        "create a new database file with the schema applied",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath(cmd)
			if path == "" {
				return fmt.Errorf("missing database path: use --db or store.path")
			}
			if err := store.InitDatabase(path); err != nil {
				return err
			}
			log.Printf("db: created %s\n", path)
			return nil
		},
	}
	addDBFlag(cmd)
	return cmd
}

func cmdDBCompact() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "compact",
		Short:        "checkpoint the WAL and vacuum the database file",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath(cmd)
			if path == "" {
				return fmt.Errorf("missing database path: use --db or store.path")
			}
			if err := store.CompactDatabase(path); err != nil {
				return err
			}
			log.Printf("db: compacted %s\n", path)
			return nil
		},
	}
	addDBFlag(cmd)
	return cmd
}
