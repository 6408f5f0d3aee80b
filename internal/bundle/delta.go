package bundle

import (
	"archive/zip"

	"docsearch/internal/diff"
	"docsearch/internal/index"
)

// DeltaIndex is written to changes.json.
type DeltaIndex struct {
	Base     string          `json:"base"`
	Head     string          `json:"head"`
	BaseID   string          `json:"baseId"`
	HeadID   string          `json:"headId"`
	Oversize bool            `json:"oversize"`
	Changes  diff.KeyChanges `json:"changes"`
}

// WriteDelta writes a delta bundle describing base↦head to zipPath and
// returns the index it recorded.
func WriteDelta(zipPath, baseName, headName string, base, head *index.Store, opt diff.Options) (DeltaIndex, error) {
	patch, oversize := diff.Unified(baseName, headName, base, head, opt)
	di := DeltaIndex{
		Base:     baseName,
		Head:     headName,
		BaseID:   base.Digest(),
		HeadID:   head.Digest(),
		Oversize: oversize,
		Changes:  diff.Keys(base, head),
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	err := writeZip(zipPath, func(zw *zip.Writer) error {
		if err := writeTextEntry(zw, "delta.patch", []byte(patch)); err != nil {
			return err
		}
		if err := writeJSONEntry(zw, "changes.json", di); err != nil {
			return err
		}
		if err := writeTextEntry(zw, "BUNDLE.ID", []byte(di.HeadID+"\n")); err != nil {
			return err
		}
		return writeTextEntry(zw, "README.md", GenerateDeltaReadme(ReadmeOptions{Name: headName, Context: ctx}))
	})
	return di, err
}
