package piececheck

import "fmt"

// SizeMismatchError means a file already on disk holds data and its size
// doesn't match the torrent's file list. The file could belong to the user
// and merely share a name with a torrent file, so it's never truncated or
// overwritten. The caller decides what to do and can re-run validation
// afterwards.
type SizeMismatchError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (me SizeMismatchError) Error() string {
	return fmt.Sprintf("existing file %q has size %v, expected %v", me.Path, me.Actual, me.Expected)
}
