// Package diskfs abstracts the file system a Checker validates and reads
// torrent data through. The interface is deliberately tiny: open-or-create,
// size, and positioned reads and writes. Implementations must give sparse
// semantics to writes past the end of a file, zero-filling the gap rather
// than requiring every intervening byte to be written.
package diskfs

import "io"

// File is an open handle within a FileSystem.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Size() (int64, error)
}

type FileSystem interface {
	// OpenFile opens the named file for reading and writing, creating it
	// (and any missing parent directories) if it doesn't exist. Name is a
	// slash-separated path relative to the file system root.
	OpenFile(name string) (File, error)
}
