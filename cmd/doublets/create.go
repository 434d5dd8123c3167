// Create command: submit an anonymous (source target) pair.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var createCmd = &cobra.Command{
	Use:   "create <source> <target>",
	Short: "Create a new link",
	Long: `Create allocates a fresh id for the (source, target) pair and prints the
new link. Source and target may reference ids that do not exist yet; 0 is
the "points at nothing" terminal.

Example:
  doublets create 100 200
  doublets create 0 0`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	source, err := parseLinkID(args[0])
	if err != nil {
		fail(err)
	}
	target, err := parseLinkID(args[1])
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	id, err := l.Create(links.Sub(source, target))
	if err != nil {
		fail(err)
	}

	created := links.Link{ID: id, Source: source, Target: target}
	if flagJSON {
		out, err := json.MarshalIndent(created, "", "  ")
		if err != nil {
			fail(err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(notation.FormatLink(created))
	}
	return nil
}
