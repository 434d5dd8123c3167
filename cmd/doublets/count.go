// Count command: cardinality of a restriction's match set.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/notation"
)

var countCmd = &cobra.Command{
	Use:   "count [id|any] [source|any] [target|any]",
	Short: "Count links matching a restriction",
	Long: `Count prints the number of links matching the restriction. With no
arguments it counts the whole store.

Example:
  doublets count
  doublets count any 100 any`,
	Args: cobra.MaximumNArgs(3),
	RunE: runCount,
}

func runCount(cmd *cobra.Command, args []string) error {
	r, err := parseRestriction(args)
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	n, err := l.Count(r)
	if err != nil {
		fail(err)
	}

	fmt.Println(notation.FormatCount(n))
	return nil
}
