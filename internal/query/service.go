// Package query exposes the search-box facing facade over an index store.
package query

import (
	"docsearch/internal/index"
	"docsearch/internal/textutil"
)

// DefaultLimit bounds a search result when no limit is configured.
const DefaultLimit = 50

// Service answers incremental search-box queries.
type Service interface {
	// Search trims and case-folds text, then returns the entries of every
	// display key starting with it, capped at the configured limit.
	Search(text string) []index.Entry
}

var _ Service = (*service)(nil)

type service struct {
	store *index.Store
	limit int
}

// Option configures the service.
type Option func(*service)

// WithLimit caps the number of returned entries. Values <= 0 select
// DefaultLimit.
func WithLimit(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New returns a Service over store. A nil store behaves as an empty index.
func New(store *index.Store, opts ...Option) Service {
	if store == nil {
		store, _ = index.FromRecords(nil)
	}
	s := &service{store: store, limit: DefaultLimit}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Search(text string) []index.Entry {
	q := textutil.NormalizeQuery(text)
	if q == "" {
		return []index.Entry{}
	}
	out := make([]index.Entry, 0, min(s.limit, 16))
	for _, e := range s.store.LookupFoldedPrefix(q) {
		out = append(out, e)
		if len(out) == s.limit {
			break
		}
	}
	return out
}
