package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/parser"
)

func newExplainCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <db-dir> <query-file>",
		Short: "Print the rewritten query and its operator tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parser.ParseFile(args[1])
			if err != nil {
				return err
			}
			cat, closeCat, err := opts.openCatalog(args[0])
			if err != nil {
				return err
			}
			defer closeCat()

			plan, err := opts.newPlanner(cat).Prepare(q)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), plan.String())
			return err
		},
	}
}
