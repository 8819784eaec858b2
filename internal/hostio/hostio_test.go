package hostio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDirReturnsStatInfoForEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte(""), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	fs := New()
	entries, err := fs.ListDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]bool{}
	for _, e := range entries {
		byName[e.Name] = true
		if e.Name == ".hidden" {
			assert.True(t, e.IsHidden)
		}
		if e.Name == "sub" {
			assert.True(t, e.IsDir)
		}
		if e.Name == "a.txt" {
			assert.Equal(t, int64(2), e.Size)
		}
	}
	assert.True(t, byName["a.txt"])
	assert.True(t, byName[".hidden"])
	assert.True(t, byName["sub"])
}

func TestOpenReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("xxxxxxxxxx"), 0o644))

	fs := New()
	f, err := fs.Open(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = f.Read(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
}

func TestMkdirRmdirUnlinkRename(t *testing.T) {
	dir := t.TempDir()
	fs := New()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, fs.Mkdir(sub))
	require.NoError(t, fs.Rmdir(sub))

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	renamed := filepath.Join(dir, "g.txt")
	require.NoError(t, fs.Rename(file, renamed))
	_, err := os.Stat(renamed)
	require.NoError(t, err)

	require.NoError(t, fs.Unlink(renamed))
	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestStatUnknownPathReturnsWrappedError(t *testing.T) {
	fs := New()
	_, err := fs.Stat(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
