package doxygen

import (
	"bufio"
	"io"
	"strings"

	"docsearch/internal/index"

	"golang.org/x/net/html"
)

// Write emits records as a search-data file that Parse reads back into the
// same records, provided every single-link qualified name ends with its
// display key (always true for Doxygen-generated tables).
func Write(w io.Writer, records []index.Record) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("var searchData=\n[\n")
	for i, r := range records {
		bw.WriteString("  [")
		writeQuoted(bw, MangleID(r.Key))
		bw.WriteString(",[")
		writeQuoted(bw, html.EscapeString(r.Key))
		single := len(r.Links) == 1
		for _, l := range r.Links {
			bw.WriteString(",[")
			writeQuoted(bw, l.Anchor)
			bw.WriteString(",1,")
			writeQuoted(bw, html.EscapeString(scopeFor(l.QualifiedName, r.Key, single)))
			bw.WriteString("]")
		}
		bw.WriteString("]]")
		if i < len(records)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("];\n")
	return bw.Flush()
}

// scopeFor is the inverse of qualify: single-link rows list the enclosing
// scope only, as Doxygen does.
func scopeFor(qualified, name string, single bool) string {
	if !single || strings.ContainsRune(qualified, '(') {
		return qualified
	}
	scope, ok := strings.CutSuffix(qualified, "::"+name)
	if !ok || scope == "" || lastSegment(scope) == name {
		return qualified
	}
	return scope
}

func writeQuoted(bw *bufio.Writer, s string) {
	bw.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '\'':
			bw.WriteByte('\\')
			bw.WriteByte(c)
		case '\n':
			bw.WriteString(`\n`)
		case '\t':
			bw.WriteString(`\t`)
		default:
			bw.WriteByte(c)
		}
	}
	bw.WriteByte('\'')
}
