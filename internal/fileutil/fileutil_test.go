package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNormalizeContent(t *testing.T) {
	require.Equal(t, "a\nb", NormalizeContent("  a\r\nb\r\n\n"))
	require.True(t, SameContent("param x string\r\n", "param x string"))
	require.False(t, SameContent("param x string", "param y string"))
	require.Equal(t, HashContent("x\r\n"), HashContent("x"))
	require.Len(t, HashContent("x"), 16)
}

func TestDedupeStrings(t *testing.T) {
	require.Equal(t, []string{"b", "a"}, DedupeStrings([]string{"b", "a", "b"}))
}

func TestWriteIfChangedTracked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.txt")

	changed, err := WriteIfChangedTracked(path, []byte("one"))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = WriteIfChangedTracked(path, []byte("one"))
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = WriteIfChangedTracked(path, []byte("two"))
	require.NoError(t, err)
	require.True(t, changed)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestCopyFromFS(t *testing.T) {
	fsys := fstest.MapFS{"core/a.bicep": &fstest.MapFile{Data: []byte("param a string")}}
	dst := filepath.Join(t.TempDir(), "infra", "core", "a.bicep")

	require.NoError(t, CopyFromFS(fsys, "core/a.bicep", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "param a string", string(data))

	require.Error(t, CopyFromFS(fsys, "core/missing.bicep", dst))
}

func TestRemoveFilePrunesEmptyDirs(t *testing.T) {
	root := t.TempDir()
	infra := filepath.Join(root, "infra")
	keep := filepath.Join(infra, "core", "host", "keep.bicep")
	gone := filepath.Join(infra, "core", "db", "sql", "sql.bicep")
	for _, p := range []string{keep, gone} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}

	require.NoError(t, RemoveFile(gone, infra))
	_, err := os.Stat(filepath.Join(infra, "core", "db"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	require.NoError(t, err)

	require.NoError(t, RemoveFile(keep, infra))
	_, err = os.Stat(filepath.Join(infra, "core"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(infra)
	require.NoError(t, err, "stop directory must be kept")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string][]string{"missing": {"a<b>.bicep"}}))
	require.Equal(t, "{\n  \"missing\": [\n    \"a<b>.bicep\"\n  ]\n}\n", buf.String())
}

func TestEnsureTrailingNewline(t *testing.T) {
	require.Equal(t, "a\n", EnsureTrailingNewline("a"))
	require.Equal(t, "a\n", EnsureTrailingNewline("a\n"))
}
