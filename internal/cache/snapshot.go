// Package cache persists built indexes between runs so that an unchanged
// documentation set is not parsed again.
//
// Conventions:
//   - The cache root defaults to "tmp/.dscache" unless overridden.
//   - A per-source cache lives at: <root>/<pathKey>/
//   - The snapshot is stored at:    <root>/<pathKey>/index.json
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docsearch/internal/index"
)

const (
	defaultCacheRoot = "tmp/.dscache"
	indexFileName    = "index.json"
)

// ErrDigestMismatch is returned by Store when the snapshot records do not
// hash to the recorded digest.
var ErrDigestMismatch = errors.New("snapshot digest mismatch")

// PathKey returns a short, stable identifier for an absolute source path.
func PathKey(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:])[:12]
}

// CacheDir resolves the cache directory for the given absolute source path.
// If baseTmp is empty, it falls back to the default "tmp/.dscache".
func CacheDir(baseTmp, srcAbs string) string {
	root := baseTmp
	if root == "" {
		root = defaultCacheRoot
	}
	return filepath.Join(root, PathKey(srcAbs))
}

// New captures store as a snapshot.
func New(source, category, sourceHash string, store *index.Store) *Snapshot {
	return &Snapshot{
		Source:        source,
		Category:      category,
		SourceHash:    sourceHash,
		Digest:        store.Digest(),
		Created:       time.Now().UTC().Format(time.RFC3339),
		FormatVersion: FormatVersion,
		Records:       store.Records(),
	}
}

// Store rebuilds the index held by the snapshot and verifies its digest.
func (s *Snapshot) Store() (*index.Store, error) {
	st, err := index.FromRecords(s.Records)
	if err != nil {
		return nil, err
	}
	if got := st.Digest(); got != s.Digest {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrDigestMismatch, s.Digest, got)
	}
	return st, nil
}

// Load reads the snapshot from <dir>/index.json.
// If the file does not exist, it returns (nil, nil) so callers can treat it
// as "no previous snapshot" without branching on errors.
func Load(dir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(dir, indexFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the snapshot atomically to <dir>/index.json.
// The write is performed into a temporary file within the same directory,
// then renamed to ensure readers never observe a partially-written file.
func Save(dir string, s *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, f, err := createTempFile(dir, indexFileName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, indexFileName))
}

// Clear removes the entire cache directory for the source.
// Safe to call even if the directory does not exist.
func Clear(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.RemoveAll(dir)
}

// createTempFile creates ".tmp-<base>-<rand>" in dir, keeping sibling
// temporaries grouped. Caller closes the file.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
