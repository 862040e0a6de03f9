package diskfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileSystem(t *testing.T, fsys FileSystem) {
	f, err := fsys.OpenFile("sub/dir/file")
	require.NoError(t, err)
	defer f.Close()

	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)

	// A write past the end zero-fills the gap.
	_, err = f.WriteAt([]byte{1}, 99)
	require.NoError(t, err)
	size, err = f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 100, size)

	b := make([]byte, 100)
	_, err = f.ReadAt(b, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, b[99])
	for _, v := range b[:99] {
		require.EqualValues(t, 0, v)
	}

	// Reads past the end report EOF.
	_, err = f.ReadAt(make([]byte, 1), 100)
	assert.ErrorIs(t, err, io.EOF)

	// Reopening sees the same contents.
	g, err := fsys.OpenFile("sub/dir/file")
	require.NoError(t, err)
	defer g.Close()
	size, err = g.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 100, size)
}

func TestMemory(t *testing.T) {
	testFileSystem(t, Memory())
}

func TestNative(t *testing.T) {
	testFileSystem(t, Native(t.TempDir()))
}

func TestNativeCreatesParentDirs(t *testing.T) {
	td := t.TempDir()
	f, err := Native(td).OpenFile("a/b/c")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(filepath.Join(td, "a", "b", "c"))
	assert.NoError(t, err)
}
