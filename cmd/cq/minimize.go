package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/annotations"
	"github.com/wbrown/janus-cq/cq/minimizer"
	"github.com/wbrown/janus-cq/cq/parser"
)

func newMinimizeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "minimize <query-file> <output-file>",
		Short: "Remove redundant body atoms from a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinimize(cmd, opts, args[0], args[1])
		},
	}
}

func runMinimize(cmd *cobra.Command, opts *rootOptions, inPath, outPath string) error {
	events := opts.collector(cmd)
	q, err := parser.ParseFile(inPath)
	if err != nil {
		parseFailed(events, inPath, err)
		opts.log.Error("parse failed", "file", inPath, "error", err)
		return err
	}

	start := time.Now()
	minimal := minimizer.Minimize(q)
	events.AddTiming(annotations.MinimizeComplete, start, map[string]interface{}{
		"atoms.before": len(q.Body),
		"atoms.after":  len(minimal.Body),
		"query":        minimal.String(),
	})
	opts.log.Info("query minimized",
		"atoms_before", len(q.Body),
		"atoms_after", len(minimal.Body))

	return writeOutput(outPath, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, minimal.String())
		return err
	})
}
