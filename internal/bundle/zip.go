package bundle

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// fixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var fixedZipTime = time.Unix(315532800, 0).UTC()

// writeZip creates zipPath (and its directory) and hands a ZIP writer to
// fill. The archive is closed before the file so the central directory is
// flushed.
func writeZip(zipPath string, fill func(zw *zip.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("mkdir output: %w", err)
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	if err := fill(zw); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// sanitizePath normalizes ZIP entry paths (forward slashes, no drive, no
// leading '/') and removes '.' and '..' segments without escaping the root.
func sanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	parts := strings.Split(strings.TrimLeft(s, "/"), "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	if len(stack) == 0 {
		return "entry"
	}
	return strings.Join(stack, "/")
}

func entryHeader(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: sanitizePath(name), Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	return h
}

// writeJSONEntry writes a JSON-encoded value with fixed timestamp and mode.
func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	w, err := zw.CreateHeader(entryHeader(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// writeTextEntry writes raw bytes with fixed timestamp and mode.
func writeTextEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(entryHeader(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
