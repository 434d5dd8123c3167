// List command: print links matching a restriction.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

var listCmd = &cobra.Command{
	Use:   "list [id|any] [source|any] [target|any]",
	Short: "List links matching a restriction",
	Long: `List prints every link matching the restriction, one per line. Each slot
is a number or the wildcard "any"; absent slots are wildcards, so a bare
"doublets list" prints the whole store.

Example:
  doublets list
  doublets list any 100 any
  doublets list any any 200`,
	Args: cobra.MaximumNArgs(3),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := parseRestriction(args)
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	matched := []links.Link{}
	err = l.Each(r, func(lk links.Link) links.Decision {
		matched = append(matched, lk)
		return links.Continue
	})
	if err != nil {
		fail(err)
	}

	if flagJSON {
		out, err := json.MarshalIndent(matched, "", "  ")
		if err != nil {
			fail(err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(notation.FormatLinks(matched))
	}
	return nil
}
