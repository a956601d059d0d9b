package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, body := range entries {
		e, err := w.Create(name)
		require.NoError(t, err)
		_, err = e.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestUnzipExtractsTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.zip")
	writeZip(t, src, map[string]string{
		"readme.txt":       "hello",
		"sub/points.csv":   "id,x\n1,2\n",
		"sub/deep/more.md": "notes",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, NewZipArchiver().Unzip(src, dest))

	got, err := os.ReadFile(filepath.Join(dest, "sub", "points.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,x\n1,2\n", string(got))

	_, err = os.Stat(filepath.Join(dest, "readme.txt"))
	assert.NoError(t, err)
}

func TestUnzipRejectsEscapingEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	writeZip(t, src, map[string]string{
		"../outside.txt": "nope",
	})

	err := NewZipArchiver().Unzip(src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	_, statErr := os.Stat(filepath.Join(dir, "outside.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnzipMissingArchive(t *testing.T) {
	dir := t.TempDir()
	err := NewZipArchiver().Unzip(filepath.Join(dir, "absent.zip"), filepath.Join(dir, "out"))
	assert.Error(t, err)
}
