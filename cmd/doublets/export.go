// Export command: dump the full link set in a portable format.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var (
	exportFormat   string
	exportOutput   string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all links",
	Long: `Export dumps every link in a portable format: native notation, a JSON
array of {id, source, target} objects, or tabular text with the header
id,source,target. With --compress the output is a zstd frame.

Example:
  doublets export
  doublets export --format json --output links.json
  doublets export --format csv --compress --output links.csv.zst`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "notation", "export format: notation, json, csv")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "zstd-compress the output")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := notation.ParseFormat(exportFormat)
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	all := []links.Link{}
	err = l.Each(links.All(), func(lk links.Link) links.Decision {
		all = append(all, lk)
		return links.Continue
	})
	if err != nil {
		fail(err)
	}

	var out []byte
	if exportCompress {
		out, err = notation.ExportCompressed(all, format)
	} else {
		out, err = notation.Export(all, format)
	}
	if err != nil {
		fail(err)
	}

	if exportOutput == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			fail(err)
		}
		return nil
	}
	if err := writeFileAtomic(exportOutput, out); err != nil {
		fail(fmt.Errorf("write %s: %w", exportOutput, err))
	}
	return nil
}
