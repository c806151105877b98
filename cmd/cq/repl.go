package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/executor"
	"github.com/wbrown/janus-cq/cq/minimizer"
	"github.com/wbrown/janus-cq/cq/parser"
	"github.com/wbrown/janus-cq/cq/planner"
)

func newReplCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <db-dir>",
		Short: "Evaluate queries interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closeCat, err := opts.openCatalog(args[0])
			if err != nil {
				return err
			}
			defer closeCat()

			r := newREPL(cmd, opts, cat)
			return r.run()
		},
	}
}

type repl struct {
	ctx     context.Context
	opts    *rootOptions
	cat     *catalog.Catalog
	planner *planner.Planner
	cmd     *cobra.Command
	out     io.Writer
}

func newREPL(cmd *cobra.Command, opts *rootOptions, cat *catalog.Catalog) *repl {
	return &repl{
		ctx:     cmd.Context(),
		opts:    opts,
		cat:     cat,
		planner: opts.newPlanner(cat),
		cmd:     cmd,
		out:     cmd.OutOrStdout(),
	}
}

func (r *repl) run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cq> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    newCompleter(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	r.out = rl.Stdout()

	fmt.Fprintf(r.out, "cq: %d relations in %s. Type .help for commands.\n",
		len(r.cat.Relations()), r.cat.Dir())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}
		if r.exec(line) {
			return nil
		}
	}
}

// exec runs one input line and reports whether the session should end.
func (r *repl) exec(line string) bool {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch {
	case line == "":
	case line == ".exit" || line == ".quit":
		return true
	case line == ".help":
		r.printHelp()
	case line == ".relations":
		r.printRelations()
	case cmd == ".explain":
		r.report(r.explain(rest))
	case cmd == ".minimize":
		r.report(r.minimize(rest))
	case strings.HasPrefix(line, "."):
		fmt.Fprintf(r.out, "Unknown command %s. Use .help for help.\n", cmd)
	default:
		r.report(r.evaluate(line))
	}
	return false
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  Q(x) :- R(x, y), ...   evaluate a query")
	fmt.Fprintln(r.out, "  .explain <query>       show the rewritten query and plan")
	fmt.Fprintln(r.out, "  .minimize <query>      remove redundant body atoms")
	fmt.Fprintln(r.out, "  .relations             list relations and column types")
	fmt.Fprintln(r.out, "  .exit                  leave")
}

func (r *repl) printRelations() {
	for _, name := range r.cat.Relations() {
		rel, err := r.cat.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(r.out, "%s(%s)\n", rel.Name, strings.Join(rel.Types, ", "))
	}
}

func (r *repl) evaluate(input string) error {
	q, err := parser.ParseQuery(input)
	if err != nil {
		return err
	}
	result, err := executor.Evaluate(r.ctx, r.cat, q,
		executor.WithPlanner(r.planner),
		executor.WithHandler(r.opts.handler(r.cmd)),
	)
	if err != nil {
		return err
	}
	if r.opts.cfg.Output.Format == "table" {
		fmt.Fprint(r.out, result.Table())
		return nil
	}
	return result.WriteLines(r.out)
}

func (r *repl) explain(input string) error {
	q, err := parser.ParseQuery(input)
	if err != nil {
		return err
	}
	plan, err := r.planner.Prepare(q)
	if err != nil {
		return err
	}
	fmt.Fprint(r.out, plan.String())
	return nil
}

func (r *repl) minimize(input string) error {
	q, err := parser.ParseQuery(input)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, minimizer.Minimize(q).String())
	return nil
}

func (r *repl) report(err error) {
	if err != nil {
		fmt.Fprintln(r.out, color.RedString("Error: %v", err))
	}
}

func newCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".explain"),
		readline.PcItem(".minimize"),
		readline.PcItem(".relations"),
		readline.PcItem(".help"),
		readline.PcItem(".exit"),
	)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cq_history")
}
