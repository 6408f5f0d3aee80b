// Package loader turns a generated documentation tree into an index store,
// reusing a cached snapshot when the search-data files are unchanged.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"docsearch/internal/cache"
	"docsearch/internal/doxygen"
	"docsearch/internal/index"
	"docsearch/internal/validate"
	"docsearch/internal/walkwalk"

	"github.com/hashicorp/go-multierror"
)

// Options controls how a documentation tree is loaded.
type Options struct {
	// Category selects the search-data files (<category>_<n>.js).
	// Empty means doxygen.DefaultCategory.
	Category string

	// CacheRoot is the snapshot cache root; empty means the cache default.
	CacheRoot string

	// NoCache disables both reading and writing snapshots.
	NoCache bool

	// Strict turns validation issues into a load failure. Otherwise they
	// are logged and duplicates are skipped.
	Strict bool

	// Rebuild discards the source's snapshot directory before loading.
	Rebuild bool

	Logger *slog.Logger
}

// Result is a loaded store with provenance.
type Result struct {
	Store      *index.Store
	Files      []walkwalk.FileInfo
	SourceHash string
	Cached     bool
	Skipped    int
}

// Load builds the store for the documentation tree at dir.
func Load(dir string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	category := opts.Category
	if category == "" {
		category = doxygen.DefaultCategory
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	files, err := walkwalk.CollectSearchData(abs, category)
	if err != nil {
		return nil, err
	}
	hash := walkwalk.SourceHash(files)
	cacheDir := cache.CacheDir(opts.CacheRoot, abs)

	if opts.Rebuild {
		if err := cache.Clear(cacheDir); err != nil {
			return nil, fmt.Errorf("failed to clear snapshot: %w", err)
		}
	}
	if !opts.NoCache && !opts.Rebuild {
		if st, ok := fromCache(cacheDir, hash, category, opts.Strict, logger); ok {
			return &Result{Store: st, Files: files, SourceHash: hash, Cached: true}, nil
		}
	}

	records, err := doxygen.ParseFiles(files)
	if err != nil {
		return nil, err
	}
	verr := validate.Records(records)
	if verr != nil {
		if opts.Strict {
			return nil, fmt.Errorf("invalid search data: %w", verr)
		}
		var merr *multierror.Error
		if errors.As(verr, &merr) {
			for _, e := range merr.Errors {
				logger.Warn("Search data issue", slog.String("issue", e.Error()))
			}
		}
	}

	res := &Result{Files: files, SourceHash: hash}
	res.Store, err = index.FromRecords(records, index.WithDuplicateHandler(func(e *index.DuplicateEntryError) error {
		res.Skipped++
		logger.Warn("Skipping duplicate entry",
			slog.String("key", e.Key),
			slog.String("qualified_name", e.QualifiedName),
			slog.String("anchor", e.Anchor),
		)
		return nil
	}))
	if err != nil {
		return nil, err
	}

	if !opts.NoCache {
		snap := cache.New(abs, category, hash, res.Store)
		snap.Validated = verr == nil
		if err := cache.Save(cacheDir, snap); err != nil {
			logger.Warn("Failed to save snapshot", slog.String("dir", cacheDir), slog.Any("error", err))
		}
	}
	logger.Info("Index built",
		slog.String("source", abs),
		slog.Int("files", len(files)),
		slog.Int("keys", res.Store.Len()),
		slog.Int("entries", res.Store.Entries()),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

// fromCache returns the snapshot store for dir when it is fresh. Strict loads
// only accept snapshots whose records passed validation.
func fromCache(dir, hash, category string, strict bool, logger *slog.Logger) (*index.Store, bool) {
	snap, err := cache.Load(dir)
	if err != nil {
		logger.Warn("Ignoring unreadable snapshot", slog.String("dir", dir), slog.Any("error", err))
		return nil, false
	}
	if !snap.Fresh(hash, category) {
		return nil, false
	}
	if strict && !snap.Validated {
		logger.Debug("Snapshot has validation issues, rebuilding", slog.String("dir", dir))
		return nil, false
	}
	st, err := snap.Store()
	if err != nil {
		logger.Warn("Ignoring stale snapshot", slog.String("dir", dir), slog.Any("error", err))
		return nil, false
	}
	logger.Debug("Index loaded from snapshot", slog.String("dir", dir), slog.Int("keys", st.Len()))
	return st, true
}
