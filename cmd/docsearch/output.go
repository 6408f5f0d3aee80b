package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"docsearch/internal/diff"
	"docsearch/internal/index"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
)

func printHits(w io.Writer, hits []index.Entry) {
	if len(hits) == 0 {
		fmt.Fprintln(w, color.YellowString("no matches"))
		return
	}
	key := color.New(color.FgCyan, color.Bold)
	for _, h := range hits {
		fmt.Fprintf(w, "%s  %s  %s\n", key.Sprint(h.DisplayKey), h.QualifiedName, color.BlueString(h.Anchor))
	}
}

func printRaw(w io.Writer, hits []index.Entry) {
	for _, h := range hits {
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.DisplayKey, h.QualifiedName, h.Anchor)
	}
}

func printJSON(w io.Writer, v any, compact bool) error {
	m, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !compact {
		if m, err = prettyjson.Format(m); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%s\n", m)
	return err
}

func printKeyChanges(w io.Writer, c diff.KeyChanges) {
	if c.Empty() {
		fmt.Fprintln(w, "No changes.")
		return
	}
	for _, k := range c.Added {
		fmt.Fprintln(w, color.GreenString("A %s", k))
	}
	for _, k := range c.Removed {
		fmt.Fprintln(w, color.RedString("D %s", k))
	}
	for _, k := range c.Modified {
		fmt.Fprintln(w, color.YellowString("M %s", k))
	}
}

func printPatch(w io.Writer, patch string) {
	for _, ln := range strings.SplitAfter(patch, "\n") {
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "+++"), strings.HasPrefix(ln, "---"):
			fmt.Fprint(w, color.New(color.Bold).Sprint(ln))
		case strings.HasPrefix(ln, "+"):
			fmt.Fprint(w, color.GreenString("%s", ln))
		case strings.HasPrefix(ln, "-"):
			fmt.Fprint(w, color.RedString("%s", ln))
		case strings.HasPrefix(ln, "@@"):
			fmt.Fprint(w, color.CyanString("%s", ln))
		default:
			fmt.Fprint(w, ln)
		}
	}
}
