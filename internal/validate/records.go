// Package validate checks loaded index records before they reach the
// builder. Unlike the builder, which fails on the first bad record, it
// reports every issue it finds so that a broken search-data file can be
// fixed in one pass.
package validate

import (
	"fmt"
	"strings"

	"docsearch/internal/index"

	"github.com/hashicorp/go-multierror"
)

// Records validates the external record shape:
//
//   - Key must be non-empty and free of surrounding whitespace.
//   - Every record carries at least one link.
//   - Every link has a non-empty qualified name and anchor.
//   - No link appears twice under the same key.
//   - No key appears in more than one record.
//
// It returns nil if everything looks fine, or a *multierror.Error listing
// all the issues found.
func Records(records []index.Record) error {
	var errs *multierror.Error

	keys := make(map[string]int, len(records))
	for i, r := range records {
		prefix := fmt.Sprintf("records[%d] (%s)", i, r.Key)

		switch {
		case r.Key == "":
			errs = multierror.Append(errs, fmt.Errorf("%s: key must be non-empty", prefix))
		case strings.TrimSpace(r.Key) != r.Key:
			errs = multierror.Append(errs, fmt.Errorf("%s: key has surrounding whitespace", prefix))
		}

		if first, dup := keys[r.Key]; dup && r.Key != "" {
			errs = multierror.Append(errs, fmt.Errorf("%s: key already defined by records[%d]", prefix, first))
		} else {
			keys[r.Key] = i
		}

		if len(r.Links) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s: links must be non-empty", prefix))
		}

		seen := make(map[index.Link]int, len(r.Links))
		for j, l := range r.Links {
			lp := fmt.Sprintf("%s.links[%d]", prefix, j)
			if l.QualifiedName == "" {
				errs = multierror.Append(errs, fmt.Errorf("%s: qualified name must be non-empty", lp))
			}
			if l.Anchor == "" {
				errs = multierror.Append(errs, fmt.Errorf("%s: anchor must be non-empty", lp))
			}
			if first, dup := seen[l]; dup {
				errs = multierror.Append(errs, fmt.Errorf("%s: duplicate of links[%d] (%s, %s)", lp, first, l.QualifiedName, l.Anchor))
			} else {
				seen[l] = j
			}
		}
	}

	return errs.ErrorOrNil()
}
