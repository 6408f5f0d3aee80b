package bundle

import (
	"bytes"
	"strings"
	"text/template"
)

// ReadmeOptions configures README generation for search and delta bundles.
// All fields are rendered deterministically; no timestamps or environment data.
type ReadmeOptions struct {
	Name     string
	Category string
	BundleID string
	Keys     int
	Entries  int
	Files    []string
	Context  int
}

const searchReadmeTemplate = `
# {{.Name}}

This archive is a **search bundle** produced by *docsearch*. It holds the symbol index of one documentation set.

## Bundle layout
- **records.json** — every display key with its ordered (qualified name, anchor) links.
- **BUNDLE.ID** — SHA-256 digest of the canonical index lines; equal ids mean equal indexes.
{{- range .Files}}
- **{{.}}**
{{- end}}

## Index
- Display keys: **{{.Keys}}**
- Entries: **{{.Entries}}**
- Category: **{{.Category}}**
- Bundle id: ` + "`{{.BundleID}}`" + `

## Conventions
- Encoding: **UTF-8**; newlines: **\n** only.
- Keys are ordered bytewise; links keep the order in which they were indexed.
- Search-data files follow the Doxygen ` + "`searchData`" + ` layout, one file per leading character.
`

const deltaReadmeTemplate = `
# {{.Name}} — DELTA bundle

This archive is a **delta bundle** produced by *docsearch*. It describes how one symbol index changed into another.

## Layout
- **delta.patch** — unified diff over the canonical index lines (` + "`key<TAB>qualified name<TAB>anchor`" + `).
- **changes.json** — display keys that were added, removed or modified.
- **BUNDLE.ID** — digest of the head index.

## Conventions
- Encoding: **UTF-8**; newlines: **\n** only.
- Unified diff context: **{{.Context}}** lines.
- Oversized diffs carry a placeholder hunk ` + "`# diff omitted (oversize)`" + ` instead of content.
`

// GenerateSearchReadme renders the README of a search bundle.
func GenerateSearchReadme(opts ReadmeOptions) []byte {
	return renderReadme(searchReadme, opts)
}

// GenerateDeltaReadme renders the README of a delta bundle.
func GenerateDeltaReadme(opts ReadmeOptions) []byte {
	return renderReadme(deltaReadme, opts)
}

var (
	searchReadme = template.Must(template.New("search").Parse(searchReadmeTemplate))
	deltaReadme  = template.Must(template.New("delta").Parse(deltaReadmeTemplate))
)

func renderReadme(t *template.Template, opts ReadmeOptions) []byte {
	if opts.Name = strings.TrimSpace(opts.Name); opts.Name == "" {
		opts.Name = "docsearch bundle"
	}

	var buf bytes.Buffer
	_ = t.Execute(&buf, opts)
	// Strip trailing spaces and keep a single trailing newline.
	lines := strings.Split(strings.TrimLeft(buf.String(), "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	out := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	return []byte(out)
}
