// Package cache defines the on-disk snapshot of a built index.
package cache

import "docsearch/internal/index"

// FormatVersion is bumped whenever the snapshot schema changes.
const FormatVersion = "2"

// Snapshot captures the records of an index built from one documentation
// source. SourceHash identifies the search-data files the records came
// from; Digest is the store digest and lets readers detect tampering.
// Validated is set when the records passed validation without issues.
type Snapshot struct {
	Source        string         `json:"source"`
	Category      string         `json:"category"`
	SourceHash    string         `json:"sourceHash"`
	Digest        string         `json:"digest"`
	Created       string         `json:"created"`
	FormatVersion string         `json:"formatVersion"`
	Validated     bool           `json:"validated"`
	Records       []index.Record `json:"records"`
}

// Fresh reports whether s was built from sources with the given hash and
// category under the current format.
func (s *Snapshot) Fresh(sourceHash, category string) bool {
	return s != nil &&
		s.FormatVersion == FormatVersion &&
		s.SourceHash == sourceHash &&
		s.Category == category
}
