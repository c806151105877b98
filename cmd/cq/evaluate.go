package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/executor"
	"github.com/wbrown/janus-cq/cq/parser"
)

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <db-dir> <query-file> <output-file>",
		Short: "Evaluate a query and write one line per answer tuple",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts, args[0], args[1], args[2])
		},
	}
}

func runEvaluate(cmd *cobra.Command, opts *rootOptions, dbDir, inPath, outPath string) error {
	runID := uuid.New()
	log := opts.log.With("run_id", runID.String())

	q, err := parser.ParseFile(inPath)
	if err != nil {
		parseFailed(opts.collector(cmd), inPath, err)
		log.Error("parse failed", "file", inPath, "error", err)
		return err
	}

	cat, closeCat, err := opts.openCatalog(dbDir)
	if err != nil {
		log.Error("open database failed", "dir", dbDir, "error", err)
		return err
	}
	defer closeCat()

	start := time.Now()
	result, err := executor.Evaluate(cmd.Context(), cat, q,
		executor.WithPlanner(opts.newPlanner(cat)),
		executor.WithHandler(opts.handler(cmd)),
		executor.WithRunID(runID),
	)
	if err != nil {
		log.Error("evaluation failed", "query", q.String(), "error", err)
		return err
	}
	log.Info("query evaluated",
		"tuples", result.Len(),
		"elapsed", time.Since(start))

	err = writeOutput(outPath, func(w io.Writer) error {
		if opts.cfg.Output.Format == "table" {
			_, err := fmt.Fprint(w, result.Table())
			return err
		}
		return result.WriteLines(w)
	})
	if err != nil {
		log.Error("write failed", "file", outPath, "error", err)
		return err
	}
	log.Debug("output written", "file", outPath, "format", opts.cfg.Output.Format)
	return nil
}
