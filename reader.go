package piececheck

import (
	"fmt"
	"io"

	"github.com/anacrolix/piececheck/diskfs"
)

// pieceReader materializes piece bytes from the torrent's underlying files.
// A piece can span several files, so a read walks the file list mapping the
// global torrent offset to per-file offsets.
type pieceReader struct {
	fsys        diskfs.FileSystem
	pieceLength int64
	files       []fileEntry
}

// readPiece fills b with the bytes the span covers.
func (me pieceReader) readPiece(b []byte, span BlockSpan) error {
	off := int64(span.Index)*me.pieceLength + span.Begin
	for _, fe := range me.files {
		if off >= fe.length {
			off -= fe.length
			continue
		}
		n := int64(len(b))
		if n > fe.length-off {
			n = fe.length - off
		}
		if err := me.readFileAt(fe, b[:n], off); err != nil {
			return fmt.Errorf("reading %q at %v: %w", fe.path, off, err)
		}
		b = b[n:]
		off = 0
		if len(b) == 0 {
			return nil
		}
	}
	if len(b) != 0 {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (me pieceReader) readFileAt(fe fileEntry, b []byte, off int64) error {
	f, err := me.fsys.OpenFile(fe.path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.ReadAt(b, off)
	if err == io.EOF {
		// A short file: the data simply isn't there.
		err = io.ErrUnexpectedEOF
	}
	return err
}
