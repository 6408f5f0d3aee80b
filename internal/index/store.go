package index

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"iter"
	"slices"
	"sort"
	"strings"

	"docsearch/internal/textutil"
)

// Store is an immutable snapshot of grouped entries. It holds no locks; any
// number of goroutines may query it concurrently.
type Store struct {
	keys   []string  // sorted, unique
	groups [][]Entry // parallel to keys, insertion order within a group
	total  int

	foldKeys []string // case-folded keys, parallel to keys
	byFold   []int    // indices into keys ordered by (foldKeys, keys)
}

func newStore(groups map[string][]Entry) *Store {
	s := &Store{
		keys:   make([]string, 0, len(groups)),
		groups: make([][]Entry, 0, len(groups)),
	}
	for k := range groups {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)

	s.foldKeys = make([]string, len(s.keys))
	s.byFold = make([]int, len(s.keys))
	for i, k := range s.keys {
		g := groups[k]
		s.groups = append(s.groups, g)
		s.total += len(g)
		s.foldKeys[i] = textutil.FoldKey(k)
		s.byFold[i] = i
	}
	sort.SliceStable(s.byFold, func(a, b int) bool {
		return s.foldKeys[s.byFold[a]] < s.foldKeys[s.byFold[b]]
	})
	return s
}

// Len returns the number of display keys (groups).
func (s *Store) Len() int { return len(s.keys) }

// Entries returns the total number of entries across all groups.
func (s *Store) Entries() int { return s.total }

// Keys returns the display keys in lexicographic order.
func (s *Store) Keys() []string { return slices.Clone(s.keys) }

// LookupExact returns the entries of key in insertion order, or nil when the
// key is absent.
func (s *Store) LookupExact(key string) []Entry {
	i, ok := slices.BinarySearch(s.keys, key)
	if !ok {
		return nil
	}
	return slices.Clone(s.groups[i])
}

// LookupPrefix yields (display key, entry) pairs for every key starting with
// prefix: keys in lexicographic order, entries in insertion order. The
// sequence is lazy and may be ranged over any number of times.
func (s *Store) LookupPrefix(prefix string) iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for i := sort.SearchStrings(s.keys, prefix); i < len(s.keys); i++ {
			if !strings.HasPrefix(s.keys[i], prefix) {
				return
			}
			for _, e := range s.groups[i] {
				if !yield(s.keys[i], e) {
					return
				}
			}
		}
	}
}

// LookupFoldedPrefix is LookupPrefix with case-insensitive matching. Keys are
// ordered by their folded form, ties broken lexicographically.
func (s *Store) LookupFoldedPrefix(prefix string) iter.Seq2[string, Entry] {
	p := textutil.FoldKey(prefix)
	return func(yield func(string, Entry) bool) {
		start := sort.Search(len(s.byFold), func(j int) bool {
			return s.foldKeys[s.byFold[j]] >= p
		})
		for _, i := range s.byFold[start:] {
			if !strings.HasPrefix(s.foldKeys[i], p) {
				return
			}
			for _, e := range s.groups[i] {
				if !yield(s.keys[i], e) {
					return
				}
			}
		}
	}
}

// Records returns the store in its serializable shape, keys in order.
// Feeding the result to FromRecords yields an equal store.
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.keys))
	for i, k := range s.keys {
		links := make([]Link, 0, len(s.groups[i]))
		for _, e := range s.groups[i] {
			links = append(links, e.link())
		}
		out = append(out, Record{Key: k, Links: links})
	}
	return out
}

// Equal reports whether both stores hold the same groups in the same order.
func (s *Store) Equal(o *Store) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !slices.Equal(s.keys, o.keys) {
		return false
	}
	for i := range s.groups {
		if !slices.Equal(s.groups[i], o.groups[i]) {
			return false
		}
	}
	return true
}

// Lines renders one "<key>\t<qualified name>\t<anchor>" line per entry in
// store order. It is the canonical text form used by Digest and diffs.
func (s *Store) Lines() []string {
	out := make([]string, 0, s.total)
	for i, k := range s.keys {
		for _, e := range s.groups[i] {
			out = append(out, k+"\t"+e.QualifiedName+"\t"+e.Anchor)
		}
	}
	return out
}

// Digest returns the lowercase SHA-256 hex of the canonical lines, each
// terminated by '\n'. Equal stores have equal digests.
func (s *Store) Digest() string {
	var buf bytes.Buffer
	for _, ln := range s.Lines() {
		buf.WriteString(ln)
		buf.WriteByte('\n')
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
