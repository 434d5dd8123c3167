// Update command: overwrite the fields of one link in place.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var updateCmd = &cobra.Command{
	Use:   "update <id> <source> <target>",
	Short: "Overwrite a link's source and target",
	Long: `Update overwrites the source and target of the link with the given id.
The id itself never changes.

Example:
  doublets update 1 100 500`,
	Args: cobra.ExactArgs(3),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseLinkID(args[0])
	if err != nil {
		fail(err)
	}
	source, err := parseLinkID(args[1])
	if err != nil {
		fail(err)
	}
	target, err := parseLinkID(args[2])
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	if _, err := l.Update(links.ByID(id), links.Sub(source, target)); err != nil {
		fail(err)
	}

	updated := links.Link{ID: id, Source: source, Target: target}
	if flagJSON {
		out, err := json.MarshalIndent(updated, "", "  ")
		if err != nil {
			fail(err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(notation.FormatLink(updated))
	}
	return nil
}
