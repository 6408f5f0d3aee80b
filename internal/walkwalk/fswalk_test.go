package walkwalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestCollectSearchDataOrdersBySequence(t *testing.T) {
	root := t.TempDir()
	search := filepath.Join(root, "search")
	writeFile(t, filepath.Join(search, "functions_a.js"), "a")
	writeFile(t, filepath.Join(search, "functions_2.js"), "2")
	writeFile(t, filepath.Join(search, "functions_10.js"), "16")
	writeFile(t, filepath.Join(search, "classes_0.js"), "c")
	writeFile(t, filepath.Join(search, "search.js"), "x")
	writeFile(t, filepath.Join(search, "functions_2.html"), "x")

	files, err := CollectSearchData(root, "functions")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"functions_2.js", "functions_a.js", "functions_10.js"},
		[]string{files[0].RelPath, files[1].RelPath, files[2].RelPath})
	assert.Equal(t, 16, files[2].Seq)
	assert.Len(t, files[0].SHA256Hex, 64)
	assert.Equal(t, int64(1), files[0].Size)

	// The search directory itself is accepted as root too.
	again, err := CollectSearchData(search, "functions")
	require.NoError(t, err)
	assert.Equal(t, SourceHash(files), SourceHash(again))
}

func TestCollectSearchDataMissingDir(t *testing.T) {
	_, err := CollectSearchData(filepath.Join(t.TempDir(), "nope"), "functions")
	assert.ErrorIs(t, err, ErrNoSearchDir)
}

func TestParseNameAndFileName(t *testing.T) {
	n, ok := ParseName("functions_1f.js", "functions")
	assert.True(t, ok)
	assert.Equal(t, 31, n)
	assert.Equal(t, "functions_1f.js", FileName("functions", 31))

	for _, bad := range []string{"functions_.js", "functions_zz.js", "all_1.js", "functions_1.json"} {
		_, ok := ParseName(bad, "functions")
		assert.False(t, ok, bad)
	}
}

func TestSourceHashChangesWithContent(t *testing.T) {
	a := []FileInfo{{RelPath: "functions_0.js", SHA256Hex: "AA"}, {RelPath: "functions_1.js", SHA256Hex: "bb"}}
	b := []FileInfo{{RelPath: "functions_1.js", SHA256Hex: "bb"}, {RelPath: "functions_0.js", SHA256Hex: "aa"}}
	c := []FileInfo{{RelPath: "functions_0.js", SHA256Hex: "ab"}, {RelPath: "functions_1.js", SHA256Hex: "bb"}}
	assert.Equal(t, SourceHash(a), SourceHash(b))
	assert.NotEqual(t, SourceHash(a), SourceHash(c))
}
