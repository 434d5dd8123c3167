// Init command: bootstrap the config and data directories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/internal/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the doublets store",
	Long: `Init creates the configuration directory with a default config.yaml
(done implicitly by every command) and initializes the data directory with
an empty sqlite store.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		fail(err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fail(fmt.Errorf("create data dir: %w", err))
	}

	store, err := sqlite.Open(dataDir)
	if err != nil {
		fail(err)
	}
	if err := store.Close(); err != nil {
		fail(err)
	}

	fmt.Printf("initialized doublets store in %s\n", dataDir)
	return nil
}
