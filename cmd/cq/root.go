package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wbrown/janus-cq/cq/annotations"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/planner"
	"github.com/wbrown/janus-cq/cq/storage"
	"github.com/wbrown/janus-cq/internal/config"
	"github.com/wbrown/janus-cq/internal/logger"
)

// rootOptions carries state shared by every subcommand. cfg and log are
// filled in before a subcommand runs.
type rootOptions struct {
	configPath string

	cfg *config.Config
	log *logger.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cq",
		Short: "Conjunctive query evaluator and minimizer",
		Long: `cq evaluates conjunctive queries with an optional SUM aggregate over a
database directory (schema.txt plus files/<Relation>.csv), and minimizes
queries by removing redundant body atoms.

  cq evaluate db query.txt answer.csv
  cq minimize query.txt minimal.txt
  cq explain db query.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./cq.yaml)")
	flags.BoolP("verbose", "v", false, "print execution annotations to stderr")
	flags.String("format", "lines", "output format (lines|table)")
	flags.String("backend", "csv", "relation storage (csv|badger)")
	flags.String("badger-dir", "", "badger directory for the badger backend")
	flags.Int64("seed", 0, "seed for fresh variable names (0 picks one)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("log-format", "text", "log format (text|json)")
	flags.String("log-output", "stderr", "log destination (stderr|stdout|path)")

	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newMinimizeCommand(opts))
	cmd.AddCommand(newExplainCommand(opts))
	cmd.AddCommand(newLoadCommand(opts))
	cmd.AddCommand(newReplCommand(opts))

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	o.cfg = cfg

	var log *logger.Logger
	if strings.ToLower(cfg.Log.Output) == "stderr" {
		log, err = logger.NewWithWriter(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	} else {
		log, err = logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.log = log.Named(cmd.Name())
	return nil
}

// openCatalog opens the database directory with the configured relation
// source. The returned close function releases the source.
func (o *rootOptions) openCatalog(dir string) (*catalog.Catalog, func(), error) {
	var opts []catalog.Option
	closeFn := func() {}

	if o.cfg.Storage.Backend == "badger" {
		store, err := storage.NewBadgerStore(o.cfg.Storage.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, catalog.WithSource(store))
		closeFn = func() {
			if err := store.Close(); err != nil {
				o.log.Warn("closing badger store", "error", err)
			}
		}
	}

	cat, err := catalog.Open(dir, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	o.log.Debug("catalog opened",
		"dir", dir,
		"backend", o.cfg.Storage.Backend,
		"relations", len(cat.Relations()))
	return cat, closeFn, nil
}

func (o *rootOptions) newPlanner(cat *catalog.Catalog) *planner.Planner {
	var rwOpts []planner.RewriterOption
	if o.cfg.Rewrite.Seed != 0 {
		rwOpts = append(rwOpts, planner.WithSeed(o.cfg.Rewrite.Seed))
	}
	return planner.New(cat,
		planner.WithRewriter(planner.NewRewriter(rwOpts...)),
		planner.WithCache(planner.NewPlanCache(64)),
	)
}

func (o *rootOptions) handler(cmd *cobra.Command) annotations.Handler {
	if !o.cfg.Verbose {
		return nil
	}
	return annotations.ConsoleHandler(cmd.ErrOrStderr())
}

// collector reports CLI-level events (parse failures, minimization) to
// the verbose handler. It is a no-op unless verbose is set.
func (o *rootOptions) collector(cmd *cobra.Command) *annotations.Collector {
	return annotations.NewCollector(o.handler(cmd))
}

func parseFailed(c *annotations.Collector, path string, err error) {
	c.Add(annotations.Event{
		Name: annotations.ErrorQueryParsing,
		Data: map[string]interface{}{"file": path, "error": err},
	})
}
