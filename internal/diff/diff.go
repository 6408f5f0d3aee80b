// Package diff compares two built indexes. Unified renders a classic
// unified patch over the canonical record lines of each store (one
// "key<TAB>qualified name<TAB>anchor" line per entry) using
// github.com/pmezard/go-difflib/difflib; Keys summarizes the change at
// display-key granularity.
package diff

import (
	"fmt"
	"slices"

	"docsearch/internal/index"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxLines is a guardrail on input size (old+new entries). When
	// exceeded, a minimal placeholder patch is returned and oversize=true.
	// 0 means "no limit".
	MaxLines int

	// Context controls the number of CONTEXT LINES in unified hunks.
	// If 0, default to 3.
	Context int
}

// Unified produces a unified patch for a↦b. The body is empty when both
// stores hold the same entries in the same order.
func Unified(aName, bName string, a, b *index.Store, opt Options) (body string, oversize bool) {
	if a.Equal(b) {
		return "", false
	}
	if opt.MaxLines > 0 && a.Entries()+b.Entries() > opt.MaxLines {
		return omitted(aName, bName), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	u := difflib.UnifiedDiff{
		A:        withNL(a.Lines()),
		B:        withNL(b.Lines()),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return omitted(aName, bName), false
	}
	return s, false
}

// KeyChanges lists display keys by how they differ between two stores.
type KeyChanges struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

// Empty reports whether no key changed.
func (c KeyChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Keys compares a and b key by key. A key is modified when its group
// differs in content or order. All lists are sorted.
func Keys(a, b *index.Store) KeyChanges {
	var c KeyChanges
	ak, bk := a.Keys(), b.Keys()
	i, j := 0, 0
	for i < len(ak) || j < len(bk) {
		switch {
		case j == len(bk) || (i < len(ak) && ak[i] < bk[j]):
			c.Removed = append(c.Removed, ak[i])
			i++
		case i == len(ak) || bk[j] < ak[i]:
			c.Added = append(c.Added, bk[j])
			j++
		default:
			if !slices.Equal(a.LookupExact(ak[i]), b.LookupExact(bk[j])) {
				c.Modified = append(c.Modified, ak[i])
			}
			i++
			j++
		}
	}
	return c
}

func withNL(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(aName, bName string) string {
	return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", aName, bName)
}
