// Serve command: run the daemon so several processes share one store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/internal/daemon"
	"github.com/linkforge/doublets/internal/memory"
	"github.com/linkforge/doublets/internal/sqlite"
	"github.com/linkforge/doublets/pkg/links"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the store over a Unix socket",
	Long: `Serve runs the doublets daemon: it opens the configured embedded store
(sqlite by default, memory with --store memory) and serves it over a Unix
domain socket until interrupted. Other doublets invocations reach it with
--store daemon.

Example:
  doublets serve
  doublets serve --socket /tmp/doublets.sock`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	backend := flagStore
	if backend == "" {
		backend = configStore
	}
	if backend == "" || backend == "daemon" {
		backend = defaultStore
	}

	var store links.Store
	switch backend {
	case "sqlite":
		dataDir, err := resolveDataDir()
		if err != nil {
			fail(fmt.Errorf("resolve data dir: %w", err))
		}
		s, err := sqlite.Open(dataDir)
		if err != nil {
			fail(err)
		}
		store = s
	case "memory":
		store = memory.NewStore()
	default:
		fail(fmt.Errorf("unknown store %q (valid: sqlite, memory): %w", backend, links.ErrInvalidArgument))
	}
	defer store.Close()

	socket, err := resolveSocketPath()
	if err != nil {
		fail(err)
	}
	if err := os.MkdirAll(filepath.Dir(socket), 0o755); err != nil {
		fail(fmt.Errorf("create socket dir: %w", err))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := daemon.NewServer(store, socket, logger)
	if err := srv.Serve(ctx); err != nil {
		fail(err)
	}
	return nil
}
