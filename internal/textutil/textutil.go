// Package textutil holds the small text normalizations shared by the index
// and the search-data codec.
package textutil

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeUTF8LF converts CRLF to LF and ensures the output is valid UTF-8
// by replacing invalid byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("\uFFFD"))
}

// FoldKey returns the case-folded form of a display key. Folding is applied
// rune by rune, so FoldKey(p) is a prefix of FoldKey(k) whenever p is a
// prefix of k.
func FoldKey(s string) string {
	// A Caser carries state; one per call keeps FoldKey goroutine-safe.
	return cases.Fold().String(s)
}

// NormalizeQuery trims surrounding whitespace and case-folds a search text.
func NormalizeQuery(s string) string {
	return FoldKey(strings.TrimSpace(s))
}
