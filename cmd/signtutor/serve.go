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

	"github.com/spf13/cobra"

	"github.com/verte-zerg/signtutor/internal/config"
	"github.com/verte-zerg/signtutor/internal/generator"
	"github.com/verte-zerg/signtutor/internal/server"
)

const serveShutdownTimeout = 5 * time.Second

var (
	serveAddr   string
	serveDBPath string
	serveSeed   int64
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local development API with randomized predictions",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&serveDBPath, "db-server", "", "server SQLite path (default: XDG data dir)")
	cmd.Flags().Int64Var(&serveSeed, "seed", 0, "fixed random seed (0 = time based)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	modules, err := rc.modules()
	if err != nil {
		return err
	}
	path := serveDBPath
	if path == "" {
		path = config.DefaultServerDBPath()
	}
	st, closeStore, err := openStore(path)
	if err != nil {
		return err
	}
	defer closeStore()

	gen := generator.New()
	if serveSeed != 0 {
		gen = generator.NewSeeded(serveSeed)
	}
	srv := server.New(st, gen, modules)
	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (db %s)", serveAddr, path)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logErrf("failed to shut down server: %v\n", err)
	}
	if err := srv.Close(shutdownCtx); err != nil {
		logErrf("failed to close server sessions: %v\n", err)
	}
	return nil
}
