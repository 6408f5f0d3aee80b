// Package meta detects project metadata of a generated documentation tree
// (project name, version, generator) so bundles and the server can label
// the index they serve.
//
// Sources, first match wins per field:
//   - Doxyfile next to or above the HTML directory (PROJECT_NAME, PROJECT_NUMBER)
//   - index.html of the HTML directory (#projectname, #projectnumber, generator meta tag)
package meta

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Info contains a minimal summary of documentation metadata.
type Info struct {
	Project   string `json:"project,omitempty"`
	Version   string `json:"version,omitempty"`
	Generator string `json:"generator,omitempty"`
}

// Name returns "project version", or fallback when no project is known.
func (i Info) Name(fallback string) string {
	if i.Project == "" {
		return fallback
	}
	if i.Version == "" {
		return i.Project
	}
	return i.Project + " " + i.Version
}

// Detect collects metadata by probing the documentation root. root may be
// the HTML directory or its search/ subdirectory.
func Detect(root string) Info {
	absRoot, _ := filepath.Abs(root)
	if filepath.Base(absRoot) == "search" {
		absRoot = filepath.Dir(absRoot)
	}

	var inf Info
	if p := firstExisting(absRoot, "Doxyfile", "../Doxyfile"); p != "" {
		inf = merge(inf, detectDoxyfile(p))
	}
	if p := firstExisting(absRoot, "index.html"); p != "" {
		inf = merge(inf, detectIndexHTML(p))
	}
	if inf.Generator == "" && inf.Project != "" {
		inf.Generator = "doxygen"
	}
	return inf
}

// detectDoxyfile reads KEY = VALUE lines; quoted values are unquoted.
func detectDoxyfile(path string) Info {
	f, err := os.Open(path)
	if err != nil {
		return Info{}
	}
	defer f.Close()

	var inf Info
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		key, val, ok := strings.Cut(ln, "=")
		if !ok {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)
		switch strings.TrimSpace(key) {
		case "PROJECT_NAME":
			inf.Project = val
		case "PROJECT_NUMBER":
			inf.Version = val
		}
	}
	if inf.Project != "" {
		inf.Generator = "doxygen"
	}
	return inf
}

// detectIndexHTML scans the Doxygen page header for the project title.
func detectIndexHTML(path string) Info {
	f, err := os.Open(path)
	if err != nil {
		return Info{}
	}
	defer f.Close()

	var inf Info
	var capture *string
	z := html.NewTokenizer(f)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return inf
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch {
			case tok.Data == "meta" && attr(tok, "name") == "generator":
				inf.Generator = strings.TrimSpace(attr(tok, "content"))
			case attr(tok, "id") == "projectname":
				capture = &inf.Project
			case attr(tok, "id") == "projectnumber":
				capture = &inf.Version
			}
		case html.TextToken:
			if capture != nil {
				if s := strings.TrimSpace(string(z.Text())); s != "" {
					*capture = s
					capture = nil
				}
			}
		case html.EndTagToken:
			capture = nil
		}
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// merge fills empty fields of a from b.
func merge(a, b Info) Info {
	if a.Project == "" {
		a.Project = b.Project
	}
	if a.Version == "" {
		a.Version = b.Version
	}
	if a.Generator == "" {
		a.Generator = b.Generator
	}
	return a
}

func firstExisting(root string, names ...string) string {
	for _, n := range names {
		p := filepath.Join(root, n)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}
