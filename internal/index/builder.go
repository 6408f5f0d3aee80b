package index

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// group holds the entries of one display key in insertion order plus the
// set of links already present, so duplicate checks stay O(1).
type group struct {
	entries []Entry
	seen    map[Link]struct{}
}

// Builder accumulates entries grouped by display key and freezes them into a
// Store. Add may be called from several goroutines; adds that target the same
// key run one at a time inside the map's per-key compute section.
type Builder struct {
	mu        sync.RWMutex // Add holds it shared, Build exclusive
	finalized bool
	store     *Store

	groups *xsync.MapOf[string, *group]
	seq    atomic.Int64
	onDup  func(*DuplicateEntryError) error
}

// Option configures a Builder.
type Option func(*Builder)

// WithDuplicateHandler routes duplicate inserts to fn. When fn returns nil the
// duplicate is skipped and loading continues; a non-nil result is returned
// to the caller of Add/AddRecords.
func WithDuplicateHandler(fn func(*DuplicateEntryError) error) Option {
	return func(b *Builder) { b.onDup = fn }
}

// NewBuilder returns an empty, open builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{groups: xsync.NewMapOf[string, *group]()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Add appends one entry to the group of displayKey, creating the group if
// needed.
func (b *Builder) Add(displayKey, qualifiedName, anchor string) error {
	pos := int(b.seq.Add(1) - 1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.finalized {
		return ErrBuilderFinalized
	}
	e := Entry{DisplayKey: displayKey, QualifiedName: qualifiedName, Anchor: anchor}
	if field := missingField(e); field != "" {
		return &MalformedEntryError{Position: pos, Link: -1, Field: field}
	}
	return b.insert(e)
}

// AddRecords loads records in order. The whole batch is checked for missing
// fields before anything is inserted; the first malformed record aborts the
// load and leaves the builder untouched.
func (b *Builder) AddRecords(records []Record) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.finalized {
		return ErrBuilderFinalized
	}
	if err := checkRecords(records); err != nil {
		return err
	}
	for _, r := range records {
		for _, l := range r.Links {
			b.seq.Add(1)
			if err := b.insert(Entry{DisplayKey: r.Key, QualifiedName: l.QualifiedName, Anchor: l.Anchor}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build freezes the accumulated groups into a Store. The builder rejects any
// later Add; calling Build again returns the same store.
func (b *Builder) Build() *Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return b.store
	}
	b.finalized = true

	groups := make(map[string][]Entry, b.groups.Size())
	b.groups.Range(func(key string, g *group) bool {
		groups[key] = g.entries
		return true
	})
	b.groups.Clear()
	b.store = newStore(groups)
	return b.store
}

// FromRecords is a shortcut for NewBuilder + AddRecords + Build.
func FromRecords(records []Record, opts ...Option) (*Store, error) {
	b := NewBuilder(opts...)
	if err := b.AddRecords(records); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func (b *Builder) insert(e Entry) error {
	l := e.link()
	dup := false
	b.groups.Compute(e.DisplayKey, func(g *group, loaded bool) (*group, bool) {
		if !loaded {
			g = &group{seen: make(map[Link]struct{}, 1)}
		}
		if _, ok := g.seen[l]; ok {
			dup = true
			return g, false
		}
		g.seen[l] = struct{}{}
		g.entries = append(g.entries, e)
		return g, false
	})
	if !dup {
		return nil
	}
	derr := &DuplicateEntryError{Key: e.DisplayKey, QualifiedName: e.QualifiedName, Anchor: e.Anchor}
	if b.onDup != nil {
		return b.onDup(derr)
	}
	return derr
}

func checkRecords(records []Record) error {
	for i, r := range records {
		if r.Key == "" {
			return &MalformedEntryError{Position: i, Link: -1, Field: "display key"}
		}
		if len(r.Links) == 0 {
			return &MalformedEntryError{Position: i, Link: -1, Field: "links"}
		}
		for j, l := range r.Links {
			if field := missingField(Entry{DisplayKey: r.Key, QualifiedName: l.QualifiedName, Anchor: l.Anchor}); field != "" {
				return &MalformedEntryError{Position: i, Link: j, Field: field}
			}
		}
	}
	return nil
}

func missingField(e Entry) string {
	switch {
	case e.DisplayKey == "":
		return "display key"
	case e.QualifiedName == "":
		return "qualified name"
	case e.Anchor == "":
		return "anchor"
	}
	return ""
}
