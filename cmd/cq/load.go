package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/storage"
)

func newLoadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <db-dir> <badger-dir>",
		Short: "Copy every relation of a CSV database into a badger store",
		Long: `Copy every relation listed in schema.txt into a badger store. Evaluate
against the store with --backend badger --badger-dir <badger-dir>.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, opts, args[0], args[1])
		},
	}
}

func runLoad(cmd *cobra.Command, opts *rootOptions, dbDir, badgerDir string) error {
	// Always read the CSV files, whatever the configured backend.
	cat, err := catalog.Open(dbDir)
	if err != nil {
		return err
	}

	store, err := storage.NewBadgerStore(badgerDir)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	total := 0
	for _, name := range cat.Relations() {
		rows, err := cat.Open(name)
		if err != nil {
			return err
		}
		n, err := store.Load(name, rows)
		rows.Close()
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
		opts.log.Debug("relation loaded", "relation", name, "rows", n)
		fmt.Fprintf(out, "%s: %d rows\n", name, n)
		total += n
	}
	opts.log.Info("database loaded", "dir", dbDir, "badger_dir", badgerDir, "rows", total)
	return nil
}
