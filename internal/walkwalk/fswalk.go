// Package walkwalk discovers the search-data files of a generated
// documentation tree in a deterministic order.
package walkwalk

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileInfo is a minimal, deterministic descriptor of a collected file.
type FileInfo struct {
	RelPath   string // path relative to the search directory, forward slashes
	AbsPath   string // absolute filesystem path
	Size      int64  // size in bytes
	SHA256Hex string // lowercase hex sha256 of the file contents
	Seq       int    // file sequence number (<category>_<seq>.js, hex)
}

// ErrNoSearchDir is returned when root holds no search-data directory.
var ErrNoSearchDir = errors.New("no search directory")

// SearchDir resolves the directory holding search-data files. root may be the
// HTML output directory (containing search/) or the search directory itself.
func SearchDir(root string) (string, error) {
	for _, d := range []string{filepath.Join(root, "search"), root} {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoSearchDir, root)
}

// CollectSearchData returns every <category>_<hex>.js file under the search
// directory of root, ordered by sequence number.
func CollectSearchData(root, category string) ([]FileInfo, error) {
	dir, err := SearchDir(root)
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		seq, ok := ParseName(de.Name(), category)
		if !ok {
			continue
		}
		abs := filepath.Join(absDir, de.Name())
		size, sum, err := hashFile(abs)
		if err != nil {
			return nil, err
		}
		out = append(out, FileInfo{
			RelPath:   filepath.ToSlash(de.Name()),
			AbsPath:   abs,
			Size:      size,
			SHA256Hex: sum,
			Seq:       seq,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].RelPath < out[j].RelPath
	})
	return out, nil
}

// FileName builds the search-data file name for a category and sequence.
func FileName(category string, seq int) string {
	return category + "_" + strconv.FormatInt(int64(seq), 16) + ".js"
}

// ParseName reports whether name is a search-data file of category and
// returns its sequence number.
func ParseName(name, category string) (int, bool) {
	rest, ok := strings.CutPrefix(name, category+"_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".js")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 16, 32)
	if err != nil || n < 0 {
		return 0, false
	}
	return int(n), true
}

// SourceHash is a canonical hash over the collected files: SHA-256 of the
// sorted lines "<relpath>:<sha256>\n".
func SourceHash(files []FileInfo) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, f.RelPath+":"+strings.ToLower(f.SHA256Hex))
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	for _, ln := range lines {
		buf.WriteString(ln)
		buf.WriteByte('\n')
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
