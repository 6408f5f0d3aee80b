package index

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEntry matches every *DuplicateEntryError.
	ErrDuplicateEntry = errors.New("duplicate index entry")
	// ErrBuilderFinalized is returned by Add after Build was called.
	ErrBuilderFinalized = errors.New("index builder already finalized")
	// ErrMalformedEntry matches every *MalformedEntryError.
	ErrMalformedEntry = errors.New("malformed index entry")
)

// DuplicateEntryError reports a (qualified name, anchor) pair that already
// exists under the same display key.
type DuplicateEntryError struct {
	Key           string
	QualifiedName string
	Anchor        string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate entry %q (%s) under key %q", e.QualifiedName, e.Anchor, e.Key)
}

func (e *DuplicateEntryError) Is(target error) bool { return target == ErrDuplicateEntry }

// MalformedEntryError identifies an input entry with a missing field.
// Position is the 0-based ordinal of the record (or Add call); Link is the
// link offset within the record, -1 when the record itself is at fault.
type MalformedEntryError struct {
	Position int
	Link     int
	Field    string
}

func (e *MalformedEntryError) Error() string {
	if e.Link >= 0 {
		return fmt.Sprintf("record %d, link %d: missing %s", e.Position, e.Link, e.Field)
	}
	return fmt.Sprintf("record %d: missing %s", e.Position, e.Field)
}

func (e *MalformedEntryError) Is(target error) bool { return target == ErrMalformedEntry }
