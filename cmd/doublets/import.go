// Import command: load a link set exported in any supported format. The
// format is auto-detected; only the (source, target) pairs are recovered,
// with fresh ids allocated in order.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import links from a file or stdin",
	Long: `Import reads a link set in notation, JSON, or tabular form, detecting
the format by structure (zstd-compressed payloads are decompressed first),
and creates one link per record. Ids in the input are not preserved; fresh
ids are allocated in input order.

Example:
  doublets import links.json
  doublets export --format csv | doublets import`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			fail(fmt.Errorf("read %s: %w", args[0], err))
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			fail(fmt.Errorf("read stdin: %w", err))
		}
	}

	imported, format, err := notation.Import(data)
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	for _, lk := range imported {
		if _, err := l.Create(links.Sub(lk.Source, lk.Target)); err != nil {
			fail(err)
		}
	}

	fmt.Printf("imported %d links (%s)\n", len(imported), format)
	return nil
}
