// Delete command: remove the single link matching a restriction, or every
// match with --all.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/doublets/pkg/notation"
)

var deleteAll bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id|any> [source|any] [target|any]",
	Short: "Delete links matching a restriction",
	Long: `Delete removes the single link matching the restriction. A restriction
matching several links is rejected unless --all is given, which removes
every match instead.

Example:
  doublets delete 3
  doublets delete any 100 any --all`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every match instead of exactly one")
}

func runDelete(cmd *cobra.Command, args []string) error {
	r, err := parseRestriction(args)
	if err != nil {
		fail(err)
	}

	l, closer, err := openLinks()
	if err != nil {
		fail(err)
	}
	defer closer()

	if deleteAll {
		n, err := l.DeleteAll(r)
		if err != nil {
			fail(err)
		}
		fmt.Println(notation.FormatCount(n))
		return nil
	}

	id, err := l.Delete(r)
	if err != nil {
		fail(err)
	}
	fmt.Println(notation.FormatDeleted(id))
	return nil
}
