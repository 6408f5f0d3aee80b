package doxygen

import (
	"fmt"
	"os"

	"docsearch/internal/index"
	"docsearch/internal/walkwalk"
)

// DefaultCategory is the search-data category holding member functions.
const DefaultCategory = "functions"

// LoadDir parses every <category>_<n>.js file of a Doxygen search directory
// in file sequence order and concatenates their records. It also returns
// the files it read so callers can key caches on their hashes.
func LoadDir(dir, category string) ([]index.Record, []walkwalk.FileInfo, error) {
	if category == "" {
		category = DefaultCategory
	}
	files, err := walkwalk.CollectSearchData(dir, category)
	if err != nil {
		return nil, nil, err
	}
	records, err := ParseFiles(files)
	if err != nil {
		return nil, nil, err
	}
	return records, files, nil
}

// ParseFiles parses already collected search-data files in order.
func ParseFiles(files []walkwalk.FileInfo) ([]index.Record, error) {
	var records []index.Record
	for _, f := range files {
		recs, err := parseFile(f.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.RelPath, err)
		}
		records = append(records, recs...)
	}
	return records, nil
}

func parseFile(path string) ([]index.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
