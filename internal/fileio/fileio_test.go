package fileio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "source.txt")
	data := "encode 0.1 abc\r\nencode 0.1 \xff\x00\r\n"

	var w Writer = Files{}
	require.NoError(t, w.ToFile(path, data))
	got, err := w.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, w.ToFile(path, "short"))
	got, err = w.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFromFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := Files{}.FromFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "failed to open file '"+path+"'")
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestToFileIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	err := Files{}.ToFile(dir, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)
}
