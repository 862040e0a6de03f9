package piececheck

import (
	"fmt"
	"path/filepath"

	"github.com/anacrolix/torrent/metainfo"
)

type fileEntry struct {
	path   string
	length int64
}

// Relative paths for the torrent's files, in torrent order. Multi-file
// torrents nest under the torrent's directory name, matching how mainstream
// clients lay data out on disk.
func torrentFileEntries(info *metainfo.Info) (ret []fileEntry) {
	for _, fi := range info.UpvertedFiles() {
		var path string
		if info.IsDir() {
			path = filepath.Join(append([]string{info.BestName()}, fi.BestPath()...)...)
		} else {
			path = info.BestName()
		}
		ret = append(ret, fileEntry{path: path, length: fi.Length})
	}
	return
}

// allocate ensures every file exists at its expected length before anything
// is hashed. An absent or empty file is extended by writing a single zero
// byte at its last offset, leaving the file system to zero-fill the gap.
func (c *Checker) allocate() error {
	for _, fe := range c.files {
		if err := c.allocateFile(fe); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) allocateFile(fe fileEntry) (err error) {
	f, err := c.fsys.OpenFile(fe.path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", fe.path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	size, err := f.Size()
	if err != nil {
		return fmt.Errorf("sizing %q: %w", fe.path, err)
	}
	switch {
	case size == fe.length:
	case size == 0:
		// The file either didn't exist or was empty: no user data is lost
		// by claiming it.
		if _, err := f.WriteAt([]byte{0}, fe.length-1); err != nil {
			return fmt.Errorf("allocating %q: %w", fe.path, err)
		}
	default:
		// Nonzero data of the wrong size might be a user's file that shares
		// a name with one of ours. Leave it alone.
		return SizeMismatchError{Path: fe.path, Expected: fe.length, Actual: size}
	}
	return nil
}
