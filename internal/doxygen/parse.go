package doxygen

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"docsearch/internal/index"
	"docsearch/internal/textutil"

	"golang.org/x/net/html"
)

// SyntaxError reports a lexical or structural problem in a search-data file.
type SyntaxError struct {
	Line, Col int
	Msg       string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("searchdata %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads one search-data file and returns its rows as index records, in
// file order. Rows with missing strings are passed through so that the index
// builder can report them with their position.
func Parse(r io.Reader) ([]index.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &parser{src: string(textutil.NormalizeUTF8LF(data)), line: 1, col: 1}
	return p.file()
}

// value is a parsed JS literal: string, int or []value.
type value struct {
	str  string
	num  int
	list []value
	kind byte // 's', 'n' or 'l'
	line int
	col  int
}

type parser struct {
	src       string
	pos       int
	line, col int
}

func (p *parser) file() ([]index.Record, error) {
	// Everything up to the first '[' is the "var searchData=" preamble.
	i := strings.IndexByte(p.src, '[')
	if i < 0 {
		p.skipWS()
		if p.pos == len(p.src) {
			return nil, nil
		}
		return nil, p.errorAt("missing searchData array")
	}
	p.advance(i)
	top, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipWS()
	if p.peek() == ';' {
		p.advance(1)
		p.skipWS()
	}
	if p.pos != len(p.src) {
		return nil, p.errorAt("unexpected trailing content")
	}
	if top.kind != 'l' {
		return nil, &SyntaxError{Line: top.line, Col: top.col, Msg: "searchData must be an array"}
	}

	records := make([]index.Record, 0, len(top.list))
	for _, row := range top.list {
		rec, err := rowRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// rowRecord converts ['id',['name',[url,flag,scope]...]] into a record.
func rowRecord(row value) (index.Record, error) {
	bad := func(msg string) error {
		return &SyntaxError{Line: row.line, Col: row.col, Msg: msg}
	}
	if row.kind != 'l' || len(row.list) != 2 || row.list[0].kind != 's' || row.list[1].kind != 'l' {
		return index.Record{}, bad("row must be ['id',['name',links...]]")
	}
	body := row.list[1].list
	if len(body) == 0 || body[0].kind != 's' {
		return index.Record{}, bad("row body must start with the display name")
	}

	name := html.UnescapeString(body[0].str)
	if name == "" {
		name = DemangleID(row.list[0].str)
	}
	rec := index.Record{Key: name, Links: make([]index.Link, 0, len(body)-1)}
	single := len(body) == 2
	for _, l := range body[1:] {
		if l.kind != 'l' || len(l.list) < 3 || l.list[0].kind != 's' || l.list[2].kind != 's' {
			return index.Record{}, &SyntaxError{Line: l.line, Col: l.col, Msg: "link must be [url,flag,scope]"}
		}
		scope := html.UnescapeString(l.list[2].str)
		rec.Links = append(rec.Links, index.Link{
			QualifiedName: qualify(scope, name, single),
			Anchor:        l.list[0].str,
		})
	}
	return rec, nil
}

// qualify derives the qualified name from a link scope. Rows with several
// links carry full member names; a single-link row may carry only the
// enclosing scope, in which case the display name is appended.
func qualify(scope, name string, single bool) string {
	if !single || scope == "" || name == "" {
		return scope
	}
	if lastSegment(scope) == name {
		return scope
	}
	return scope + "::" + name
}

// lastSegment returns the part after the final "::" that precedes any
// parameter list.
func lastSegment(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	return strings.TrimSpace(s)
}

func (p *parser) value() (value, error) {
	p.skipWS()
	v := value{line: p.line, col: p.col}
	switch c := p.peek(); {
	case c == '[':
		p.advance(1)
		v.kind = 'l'
		for {
			p.skipWS()
			if p.peek() == ']' {
				p.advance(1)
				return v, nil
			}
			elem, err := p.value()
			if err != nil {
				return v, err
			}
			v.list = append(v.list, elem)
			p.skipWS()
			switch p.peek() {
			case ',':
				p.advance(1)
			case ']':
			default:
				return v, p.errorAt("expected ',' or ']'")
			}
		}
	case c == '\'' || c == '"':
		s, err := p.quoted(c)
		v.kind, v.str = 's', s
		return v, err
	case c == '-' || (c >= '0' && c <= '9'):
		start := p.pos
		p.advance(1)
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.advance(1)
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return v, &SyntaxError{Line: v.line, Col: v.col, Msg: "bad number"}
		}
		v.kind, v.num = 'n', n
		return v, nil
	case c == 0:
		return v, p.errorAt("unexpected end of input")
	default:
		return v, p.errorAt(fmt.Sprintf("unexpected %q", c))
	}
}

func (p *parser) quoted(q byte) (string, error) {
	line, col := p.line, p.col
	p.advance(1)
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case q:
			p.advance(1)
			return b.String(), nil
		case '\n':
			return "", &SyntaxError{Line: line, Col: col, Msg: "unterminated string"}
		case '\\':
			if p.pos+1 >= len(p.src) {
				break
			}
			esc := p.src[p.pos+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(esc)
			}
			p.advance(2)
			continue
		}
		b.WriteByte(c)
		p.advance(1)
	}
	return "", &SyntaxError{Line: line, Col: col, Msg: "unterminated string"}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance(n int) {
	for ; n > 0 && p.pos < len(p.src); n-- {
		if p.src[p.pos] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
		p.pos++
	}
}

func (p *parser) skipWS() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n':
			p.advance(1)
		default:
			return
		}
	}
}

func (p *parser) errorAt(msg string) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: msg}
}
