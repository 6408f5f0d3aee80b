// Package main provides the docsearch CLI. It indexes the search data of a
// Doxygen HTML tree and answers prefix queries against it.
//
// Commands:
//   - build  : docsearch build <docs_dir>
//   - search : docsearch search <source> <text>
//   - serve  : docsearch serve <source>
//   - diff   : docsearch diff <old_source> <new_source>
//   - bundle : docsearch bundle <source> -o out.zip [--base <old_source>]
//   - export : docsearch export <docs_dir> [--db index.db]
//
// A <source> is either a documentation directory or a SQLite database
// written by export. Exit status is 2 for usage errors and 1 for failures.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps errors to exit codes.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(&app{})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("ERROR:"), err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, color.YellowString("usage: %s", ue.use))
		return 2
	}
	return 1
}

// usageError marks errors caused by how the CLI was invoked.
type usageError struct {
	use string
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
