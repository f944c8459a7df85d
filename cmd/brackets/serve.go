// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdhender/brackets/web/handlers"
	"github.com/spf13/cobra"
)

func cmdServe() *cobra.Command {
	runWorker := true
	addFlags := func(cmd *cobra.Command) error {
		addDBFlag(cmd)
		addDataDirFlag(cmd)
		addMaxDepthFlag(cmd)
		cmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
		cmd.Flags().Duration("timeout", 0, "auto-shutdown after duration, e.g. 5s or 1m (overrides server.timeout)")
		cmd.Flags().BoolVar(&runWorker, "work", runWorker, "parse uploads before responding")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "serve",
		Short:        "serve the JSON API",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			timeout := cfg.Server.Timeout.Duration
			if cmd.Flags().Changed("timeout") {
				timeout, _ = cmd.Flags().GetDuration("timeout")
			}

			s, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("failed to create SQLite store: %w", err)
			}
			defer s.Close()

			if stats, err := s.Stats(context.Background()); err != nil {
				return err
			} else {
				log.Printf("store: %d documents, %d parsed, %d failed, %d jobs queued",
					stats.Documents, stats.Parsed, stats.Failed, stats.Queued)
			}

			p, err := newParser(cmd)
			if err != nil {
				return err
			}
			h := handlers.New(s, p)
			if runWorker {
				worker, err := newWorker(cmd, s)
				if err != nil {
					return err
				}
				h.SetWorker(worker)
			}

			mux := http.NewServeMux()
			h.Routes(mux)

			return serve(addr, mux, timeout)
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// serve runs the server until it is signaled or the timeout expires,
// then shuts it down gracefully.
func serve(addr string, handler http.Handler, timeout time.Duration) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	if timeout > 0 {
		go func() {
			log.Printf("server: will auto-shutdown in %v", timeout)
			time.Sleep(timeout)
			log.Printf("server: timeout reached, initiating shutdown")
			shutdown <- os.Interrupt
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-shutdown:
	}
	log.Printf("server: shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown error: %w", err)
	}

	log.Printf("server: stopped")
	return nil
}
