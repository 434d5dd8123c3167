// Read command: point lookup by id.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Read a link by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	id, err := parseLinkID(args[0])
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	var found *links.Link
	err = l.Each(links.ByID(id), func(lk links.Link) links.Decision {
		cp := lk
		found = &cp
		return links.Break
	})
	if err != nil {
		fail(err)
	}
	if found == nil {
		fail(fmt.Errorf("link %d: %w", id, links.ErrNotFound))
	}

	if flagJSON {
		out, err := json.MarshalIndent(found, "", "  ")
		if err != nil {
			fail(err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(notation.FormatLink(*found))
	}
	return nil
}
