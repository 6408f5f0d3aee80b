// Package index defines the documentation symbol index: entries grouped by
// display key, a builder that accumulates them, and an immutable store that
// answers exact and prefix lookups.
package index

// Entry is one search hit: the key it is listed under, the fully scoped
// symbol name shown to the user and an opaque documentation locator.
type Entry struct {
	DisplayKey    string `json:"display_key"`
	QualifiedName string `json:"qualified_name"`
	Anchor        string `json:"anchor"`
}

// Link is the (qualified name, anchor) pair stored under a display key.
type Link struct {
	QualifiedName string `json:"qualified_name"`
	Anchor        string `json:"anchor"`
}

// Record is the external input and persistence shape: one display key and
// its links in generator order.
type Record struct {
	Key   string `json:"key"`
	Links []Link `json:"links"`
}

func (e Entry) link() Link { return Link{QualifiedName: e.QualifiedName, Anchor: e.Anchor} }
