// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/mdhender/brackets/model"
	"github.com/mdhender/brackets/pipelines/stages"
	store "github.com/mdhender/brackets/stores/sqlite"
	"github.com/spf13/cobra"
)

func addDataDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "data directory (overrides data.dir)")
}

func dataDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("data") {
		dir, _ := cmd.Flags().GetString("data")
		return dir
	}
	return cfg.Data.Dir
}

func newWorker(cmd *cobra.Command, s *store.SQLiteStore) (*stages.WorkerService, error) {
	p, err := newParser(cmd)
	if err != nil {
		return nil, err
	}
	worker := stages.NewWorkerService(s, p, dataDir(cmd), "")
	worker.SetLogger(newLogger(cmd))
	return worker, nil
}

func cmdIngest() *cobra.Command {
	ext := ""
	runWorker := false
	addFlags := func(cmd *cobra.Command) error {
		addDBFlag(cmd)
		addDataDirFlag(cmd)
		addMaxDepthFlag(cmd)
		cmd.Flags().StringVar(&ext, "ext", ext, "extension of notation files (overrides data.ext)")
		cmd.Flags().BoolVar(&runWorker, "work", runWorker, "process the queue after ingesting")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "ingest [<file>...]",
		Short:        "store notation files and queue them for parsing",
		Long:         `Store the named files, or every matching file in the data directory, and queue them for parsing.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			quiet, _ := cmd.Flags().GetBool("quiet")
			if ext == "" {
				ext = cfg.Data.Ext
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var results []stages.IngestResult
			started := time.Now()
			if len(args) == 0 {
				svc := stages.NewIngestService(s, dataDir(cmd))
				if results, err = svc.IngestDir(ctx, ext); err != nil {
					return err
				}
			} else {
				// files named on the command line are relative to the working directory
				svc := stages.NewIngestService(s, "")
				for _, arg := range args {
					result, err := svc.IngestFile(ctx, filepath.Clean(arg))
					if err != nil {
						return err
					}
					results = append(results, *result)
				}
			}

			added := 0
			for _, result := range results {
				if result.Duplicate {
					if !quiet {
						log.Printf("%s: duplicate of document %d\n", result.Name, result.DocumentID)
					}
					continue
				}
				added++
				if !quiet {
					log.Printf("%s: document %d (%s) queued\n", result.Name, result.DocumentID, result.UUID)
				}
			}
			log.Printf("ingest: %d files, %d new, in %v\n", len(results), added, time.Since(started))

			if runWorker {
				worker, err := newWorker(cmd, s)
				if err != nil {
					return err
				}
				processed, failed, err := worker.Drain(ctx)
				if err != nil {
					return err
				}
				log.Printf("work: %d jobs, %d failed\n", processed, failed)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdWork() *cobra.Command {
	var stage string
	poll := time.Duration(0)
	addFlags := func(cmd *cobra.Command) error {
		addDBFlag(cmd)
		addDataDirFlag(cmd)
		addMaxDepthFlag(cmd)
		cmd.Flags().StringVar(&stage, "stage", stage, "process only this stage (parse or render)")
		cmd.Flags().DurationVar(&poll, "poll", poll, "keep polling for work at this interval (0 = exit when idle)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "work",
		Short:        "process queued pipeline jobs",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if stage != "" && stage != model.WorkStageParse && stage != model.WorkStageRender {
				return fmt.Errorf("unknown stage %q", stage)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			worker, err := newWorker(cmd, s)
			if err != nil {
				return err
			}

			for {
				var processed, failed int
				if stage == "" {
					processed, failed, err = worker.Drain(ctx)
				} else {
					for {
						ok, jobErr := worker.ProcessJob(ctx, stage)
						if !ok {
							err = jobErr
							break
						}
						processed++
						if jobErr != nil {
							failed++
							if verbose {
								log.Printf("work: %v\n", jobErr)
							}
						}
					}
				}
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				if processed != 0 || poll == 0 {
					log.Printf("work: %d jobs, %d failed\n", processed, failed)
				}
				if poll == 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(poll):
				}
			}
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdFailed() *cobra.Command {
	reset := false
	addFlags := func(cmd *cobra.Command) error {
		addDBFlag(cmd)
		cmd.Flags().BoolVar(&reset, "reset", reset, "queue failed jobs again")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "failed [<stage>...]",
		Short:        "list failed pipeline jobs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			stageList := args
			if len(stageList) == 0 {
				stageList = model.WorkStages
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, stage := range stageList {
				works, err := s.ListFailedWork(ctx, stage)
				if err != nil {
					return err
				}
				for _, w := range works {
					var code, msg string
					if w.Error != nil {
						code, msg = w.Error.Code, w.Error.Message
					}
					fmt.Printf("%-8s %6d %-20s attempt %d %s: %s\n", stage, w.ID, code, w.Attempt, w.Document, msg)
				}
				if reset {
					n, err := s.RequeueFailedWork(ctx, stage)
					if err != nil {
						return err
					}
					log.Printf("%s: %d jobs queued again\n", stage, n)
				}
			}

			summary, err := s.WorkSummary(ctx)
			if err != nil {
				return err
			}
			stageNames := make([]string, 0, len(summary))
			for stage := range summary {
				stageNames = append(stageNames, stage)
			}
			sort.Strings(stageNames)
			for _, stage := range stageNames {
				counts := summary[stage]
				log.Printf("%-8s queued %d, running %d, ok %d, failed %d\n", stage,
					counts.Queued, counts.Running, counts.Ok, counts.Failed)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
