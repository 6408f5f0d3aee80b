// Package bundle writes deterministic ZIP archives of a built index.
//
// A search bundle has the following layout:
//
//	records.json                 # index records, key order
//	BUNDLE.ID                    # store digest
//	search/<category>_<hex>.js   # Doxygen search data, one file per leading character
//	README.md                    # stable (no wall-clock timestamps)
//
// A delta bundle compares two indexes:
//
//	delta.patch                  # unified diff of the canonical index lines
//	changes.json                 # added/removed/modified display keys
//	BUNDLE.ID                    # head store digest
//	README.md
package bundle

import (
	"archive/zip"
	"bytes"
	"path"
	"sort"

	"docsearch/internal/doxygen"
	"docsearch/internal/index"
	"docsearch/internal/textutil"
	"docsearch/internal/walkwalk"
)

// Options names the bundle and its search-data category.
type Options struct {
	Name     string
	Category string
}

func (o Options) category() string {
	if o.Category == "" {
		return doxygen.DefaultCategory
	}
	return o.Category
}

// WriteSearch writes the search bundle for store to zipPath.
func WriteSearch(zipPath string, store *index.Store, opts Options) error {
	records := store.Records()
	shards, err := searchShards(records, opts.category())
	if err != nil {
		return err
	}
	id := store.Digest()

	return writeZip(zipPath, func(zw *zip.Writer) error {
		if err := writeJSONEntry(zw, "records.json", records); err != nil {
			return err
		}
		if err := writeTextEntry(zw, "BUNDLE.ID", []byte(id+"\n")); err != nil {
			return err
		}
		names := make([]string, 0, len(shards))
		for _, sh := range shards {
			if err := writeTextEntry(zw, sh.name, sh.body); err != nil {
				return err
			}
			names = append(names, sh.name)
		}
		readme := GenerateSearchReadme(ReadmeOptions{
			Name:     opts.Name,
			Category: opts.category(),
			BundleID: id,
			Keys:     store.Len(),
			Entries:  store.Entries(),
			Files:    names,
		})
		return writeTextEntry(zw, "README.md", readme)
	})
}

type shard struct {
	name string
	body []byte
}

// searchShards splits records by the case-folded first character of their
// key, the way Doxygen lays out its search directory. Shards are numbered
// in order of that character.
func searchShards(records []index.Record, category string) ([]shard, error) {
	groups := make(map[string][]index.Record)
	for _, r := range records {
		lead := textutil.FoldKey(string([]rune(r.Key)[:1]))
		groups[lead] = append(groups[lead], r)
	}
	leads := make([]string, 0, len(groups))
	for l := range groups {
		leads = append(leads, l)
	}
	sort.Strings(leads)

	out := make([]shard, 0, len(leads))
	for seq, l := range leads {
		var buf bytes.Buffer
		if err := doxygen.Write(&buf, groups[l]); err != nil {
			return nil, err
		}
		out = append(out, shard{
			name: path.Join("search", walkwalk.FileName(category, seq)),
			body: buf.Bytes(),
		})
	}
	return out, nil
}
