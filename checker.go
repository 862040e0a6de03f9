package piececheck

import (
	"fmt"

	"github.com/anacrolix/log"
	"github.com/anacrolix/missinggo/v2/panicif"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/anacrolix/piececheck/diskfs"
)

// Checker hashes whole pieces on existing files within the given file system
// and reports good and bad pieces through its state. It holds the state for
// the duration of one verification run: Run consumes the Checker and hands
// the updated state back to the caller, so two runs can't race over the same
// state.
type Checker struct {
	fsys  diskfs.FileSystem
	info  *metainfo.Info
	files []fileEntry
	state *CheckerState

	Logger log.Logger
}

// NewChecker validates and allocates the torrent's files, then seeds the
// state with one full-length span per piece so the first Run discovers any
// pieces already correct on disk from an earlier session.
func NewChecker(fsys diskfs.FileSystem, info *metainfo.Info) (*Checker, error) {
	c := ResumeChecker(fsys, info, NewCheckerState())
	if err := c.allocate(); err != nil {
		return nil, err
	}
	c.seedPending()
	return c, nil
}

// ResumeChecker wraps a previously persisted state. Files were validated
// when the state was first created, and pieces the state has confirmed good
// are not re-hashed.
func ResumeChecker(fsys diskfs.FileSystem, info *metainfo.Info, state *CheckerState) *Checker {
	return &Checker{
		fsys:   fsys,
		info:   info,
		files:  torrentFileEntries(info),
		state:  state,
		Logger: log.Default,
	}
}

func (c *Checker) seedPending() {
	for i := 0; i < c.info.NumPieces(); i++ {
		c.state.AddPendingBlock(BlockSpan{
			Index: uint32(i),
			Begin: 0,
			// The final piece is usually shorter than the nominal piece
			// length. Seeding it at its true length is what lets it ever
			// reach full coverage.
			Length: c.info.Piece(i).V1Length(),
		})
	}
}

// AddPendingBlock records a block write notification against the held state.
func (c *Checker) AddPendingBlock(b BlockSpan) {
	panicif.Nil(c.state)
	c.state.AddPendingBlock(b)
}

// Run merges pending spans, hashes every piece that has reached full
// coverage and isn't already confirmed good, and returns the updated state.
// It consumes the Checker: ownership of the state passes back to the caller
// and further use of the Checker panics. The returned state is valid even
// when err is non-nil, retaining verdicts collected before the failure.
func (c *Checker) Run() (_ *CheckerState, err error) {
	panicif.Nil(c.state)
	state := c.state
	c.state = nil

	buf := make([]byte, c.info.PieceLength)
	r := pieceReader{
		fsys:        c.fsys,
		pieceLength: c.info.PieceLength,
		files:       c.files,
	}
	numPieces := c.info.NumPieces()

	err = state.visitWholePieces(
		func(index uint32) int64 {
			if int(index) >= numPieces {
				return -1
			}
			return c.info.Piece(int(index)).V1Length()
		},
		func(span BlockSpan) (bool, error) {
			if int(span.Index) >= numPieces {
				// The state disagrees with the info dictionary on how many
				// pieces there are. Unrecoverable.
				return false, fmt.Errorf("no expected hash for piece %v: torrent has %v pieces", span.Index, numPieces)
			}
			expected := c.info.Piece(int(span.Index)).V1Hash()
			if !expected.Ok {
				return false, fmt.Errorf("no v1 hash for piece %v", span.Index)
			}
			b := buf[:span.Length]
			if err := r.readPiece(b, span); err != nil {
				return false, fmt.Errorf("reading piece %v: %w", span.Index, err)
			}
			good := metainfo.HashBytes(b) == expected.Value
			if !good {
				c.Logger.Levelf(log.Debug, "piece %v failed hash check", span.Index)
			}
			return good, nil
		},
	)
	return state, err
}
