package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"docsearch/internal/config"
	"docsearch/internal/index"
	"docsearch/internal/loader"
	"docsearch/internal/logger"
	"docsearch/internal/sqlstore"

	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	category   string
	cacheDir   string
	noCache    bool
	strict     bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "docsearch",
		Short:         "Index and search Doxygen symbol tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		// Arguments that name no subcommand land here.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return unknownCommand(cmd, args[0])
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{use: cmd.UseLine(), err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error); overrides config")
	pf.StringVar(&a.category, "category", "", "search-data category (<category>_<n>.js); overrides config")
	pf.StringVar(&a.cacheDir, "cache-dir", "", "snapshot cache directory; overrides config")
	pf.BoolVar(&a.noCache, "no-cache", false, "do not read or write index snapshots")
	pf.BoolVar(&a.strict, "strict", false, "fail on any search-data validation issue")

	root.AddCommand(
		newBuildCmd(a),
		newSearchCmd(a),
		newServeCmd(a),
		newDiffCmd(a),
		newBundleCmd(a),
		newExportCmd(a),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.category != "" {
		cfg.Category = a.category
	}
	if a.cacheDir != "" {
		cfg.Cache.Dir = a.cacheDir
	}
	if a.noCache {
		cfg.Cache.Disabled = true
	}
	if a.strict {
		cfg.Strict = true
	}
	if err := cfg.Validate(); err != nil {
		return usageError{use: cmd.UseLine(), err: err}
	}

	a.cfg = cfg
	a.logger, err = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	return err
}

func (a *app) loaderOptions() loader.Options {
	return loader.Options{
		Category:  a.cfg.Category,
		CacheRoot: a.cfg.Cache.Dir,
		NoCache:   a.cfg.Cache.Disabled,
		Strict:    a.cfg.Strict,
		Logger:    a.logger,
	}
}

// openStore builds the store for a documentation directory or loads it
// from a SQLite database written by export.
func (a *app) openStore(ctx context.Context, source string) (*index.Store, error) {
	if isDatabase(source) {
		return sqlstore.Load(ctx, source)
	}
	res, err := loader.Load(source, a.loaderOptions())
	if err != nil {
		return nil, err
	}
	return res.Store, nil
}

func isDatabase(source string) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func unknownCommand(cmd *cobra.Command, name string) error {
	err := fmt.Errorf("unknown command %q for %q", name, cmd.CommandPath())
	if s := cmd.SuggestionsFor(name); len(s) > 0 {
		err = fmt.Errorf("%w (did you mean %q?)", err, s[0])
	}
	return usageError{use: cmd.UseLine(), err: err}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{
				use: cmd.UseLine(),
				err: fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name(), n, len(args)),
			}
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs reporting a usage error.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{
				use: cmd.UseLine(),
				err: fmt.Errorf("%s: expected at least %d argument(s), got %d", cmd.Name(), n, len(args)),
			}
		}
		return nil
	}
}
