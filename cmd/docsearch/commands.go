package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"docsearch/internal/bundle"
	"docsearch/internal/diff"
	"docsearch/internal/index"
	"docsearch/internal/loader"
	"docsearch/internal/meta"
	"docsearch/internal/query"
	"docsearch/internal/server"
	"docsearch/internal/sqlstore"
	"docsearch/internal/watch"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	var rebuild bool
	cmd := &cobra.Command{
		Use:   "build <docs_dir>",
		Short: "Index a documentation tree and refresh its snapshot",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.loaderOptions()
			opts.Rebuild = rebuild
			res, err := loader.Load(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Indexed %s (files=%d, keys=%d, entries=%d, skipped=%d, cached=%t, digest=%s)\n",
				args[0], len(res.Files), res.Store.Len(), res.Store.Entries(), res.Skipped, res.Cached, res.Store.Digest(),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "discard the cached snapshot and parse the search data again")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "search <source> <text>",
		Short: "Print the entries whose display key starts with text (case-insensitive)",
		Args:  minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = a.cfg.Search.Limit
			}
			svc := query.LoggingMiddleware(query.New(st, query.WithLimit(limit)), a.logger)
			hits := svc.Search(strings.Join(args[1:], " "))

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return printJSON(out, hits, raw)
			case raw:
				printRaw(out, hits)
			default:
				printHits(out, hits)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (0 = config search.limit)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "plain tab-separated (or compact JSON) output")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve <source>",
		Short: "Serve prefix search over HTTP, rebuilding when the documentation changes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			source := args[0]
			st, err := a.openStore(ctx, source)
			if err != nil {
				return err
			}
			newService := func(st *index.Store) query.Service {
				return query.New(st, query.WithLimit(a.cfg.Search.Limit))
			}
			live := query.NewLive(newService(st))

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			svc, err := query.MetricsMiddleware(live, reg)
			if err != nil {
				return err
			}
			svc = query.LoggingMiddleware(svc, a.logger)

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			if a.cfg.Watch.Enabled && !noWatch && !isDatabase(source) {
				w, err := watch.New(source, a.cfg.Watch.Debounce, func() (*index.Store, error) {
					res, err := loader.Load(source, a.loaderOptions())
					if err != nil {
						return nil, err
					}
					return res.Store, nil
				}, func(st *index.Store) { live.Swap(newService(st)) }, a.logger)
				if err != nil {
					return err
				}
				go func() {
					if err := w.Run(ctx); err != nil {
						a.logger.Error("Watcher stopped", slog.Any("error", err))
					}
				}()
			}

			var info meta.Info
			if !isDatabase(source) {
				info = meta.Detect(source)
			}
			return server.Run(ctx, addr, server.MakeHandler(svc, info, reg, a.logger), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default config http.addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not rebuild when search data changes")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var (
		opt      diff.Options
		keysOnly bool
	)
	cmd := &cobra.Command{
		Use:   "diff <old_source> <new_source>",
		Short: "Show how the index of one documentation set differs from another",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := a.openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cur, err := a.openStore(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if keysOnly {
				printKeyChanges(out, diff.Keys(old, cur))
				return nil
			}
			body, _ := diff.Unified(args[0], args[1], old, cur, opt)
			if body == "" {
				fmt.Fprintln(out, "No changes.")
				return nil
			}
			printPatch(out, body)
			return nil
		},
	}
	cmd.Flags().IntVar(&opt.Context, "context", 3, "unified diff context lines")
	cmd.Flags().IntVar(&opt.MaxLines, "max-lines", 0, "omit the patch above this many entries (0 = no limit)")
	cmd.Flags().BoolVar(&keysOnly, "keys", false, "list added/removed/modified display keys only")
	return cmd
}

func newBundleCmd(a *app) *cobra.Command {
	var (
		out  string
		base string
		name string
		opt  diff.Options
	)
	cmd := &cobra.Command{
		Use:   "bundle <source> -o <out.zip>",
		Short: "Write a reproducible search bundle, or a delta bundle against --base",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return usageError{use: cmd.UseLine(), err: fmt.Errorf("bundle: -o is required")}
			}
			st, err := a.openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = meta.Detect(args[0]).Name(filepath.Base(filepath.Clean(args[0])))
			}

			if base == "" {
				if err := bundle.WriteSearch(out, st, bundle.Options{Name: name, Category: a.cfg.Category}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote bundle %s (keys=%d, entries=%d)\n", out, st.Len(), st.Entries())
				return nil
			}

			old, err := a.openStore(cmd.Context(), base)
			if err != nil {
				return err
			}
			di, err := bundle.WriteDelta(out, base, name, old, st, opt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote delta bundle %s (added=%d, removed=%d, modified=%d, oversize=%t)\n",
				out, len(di.Changes.Added), len(di.Changes.Removed), len(di.Changes.Modified), di.Oversize)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output zip path")
	cmd.Flags().StringVar(&base, "base", "", "previous source; writes a delta bundle")
	cmd.Flags().StringVar(&name, "name", "", "bundle name (default: detected project)")
	cmd.Flags().IntVar(&opt.Context, "context", 3, "unified diff context lines in delta bundles")
	cmd.Flags().IntVar(&opt.MaxLines, "max-lines", 0, "omit the delta patch above this many entries (0 = no limit)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "export <docs_dir>",
		Short: "Export the index to a SQLite database",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if db == "" {
				db = a.cfg.SQLite.Path
			}
			if err := sqlstore.Export(cmd.Context(), db, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", st.Entries(), db)
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "database path (default config sqlite.path)")
	return cmd
}
