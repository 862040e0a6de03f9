package piececheck

import (
	"path/filepath"
	"testing"

	qt "github.com/go-quicktest/qt"

	"github.com/anacrolix/torrent/metainfo"
)

func TestStateDB(t *testing.T) {
	db, err := OpenStateDB(filepath.Join(t.TempDir(), "state.db"))
	qt.Assert(t, qt.IsNil(err))
	defer db.Close()

	ih := metainfo.Hash{1, 2, 3}

	// Missing entries aren't an error.
	got, err := db.Get(ih)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.Ok))

	s := NewCheckerState()
	s.AddPendingBlock(BlockSpan{0, 0, 100})
	qt.Assert(t, qt.IsNil(s.visitWholePieces(constLen(100), func(BlockSpan) (bool, error) {
		return true, nil
	})))
	s.DrainVerdicts(func(Verdict) {})

	qt.Assert(t, qt.IsNil(db.Put(ih, s)))
	got, err = db.Get(ih)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.Ok))
	qt.Assert(t, qt.IsTrue(got.Value.GoodBitmap().Contains(0)))
	qt.Assert(t, qt.DeepEquals(got.Value.pending, s.pending))

	qt.Assert(t, qt.IsNil(db.Delete(ih)))
	got, err = db.Get(ih)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(got.Ok))
}
