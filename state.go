package piececheck

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	g "github.com/anacrolix/generics"

	"github.com/anacrolix/torrent/bencode"
)

// Verdict is the outcome of hashing a whole piece against its expected
// digest.
type Verdict struct {
	Index uint32 `bencode:"i"`
	Good  bool   `bencode:"g"`
}

// Counts exposed by CheckerState.Stats.
type Stats struct {
	// Pieces with at least one pending block span.
	Pending int
	// Pieces confirmed good by an earlier drain.
	ConfirmedGood int
	// Verdicts computed but not yet drained.
	Undrained int
}

// CheckerState accumulates partial block writes per piece, remembers which
// pieces have already been confirmed good, and buffers freshly computed
// verdicts until the caller drains them. It is not synchronized: a state
// belongs to exactly one Checker or one caller at a time, and Checker.Run
// enforces that by consuming the Checker that holds it.
type CheckerState struct {
	pending map[uint32][]BlockSpan
	// Only good pieces are remembered here. Bad verdicts carry no weight
	// after they're drained: a bad piece re-enters the merge/verify cycle as
	// soon as new writes arrive for it.
	good      *roaring.Bitmap
	undrained []Verdict
}

func NewCheckerState() *CheckerState {
	return &CheckerState{
		pending: make(map[uint32][]BlockSpan),
		good:    roaring.NewBitmap(),
	}
}

// AddPendingBlock records a block write for later coalescing. Duplicate and
// overlapping spans are fine, the merge pass resolves them.
func (me *CheckerState) AddPendingBlock(b BlockSpan) {
	g.MakeMapIfNil(&me.pending)
	me.pending[b.Index] = append(me.pending[b.Index], b)
}

// Coalesces each piece's pending spans. Spans are sorted by offset, then
// merged from the top down until a gap is hit. A piece in steady state
// converges to a handful of spans so this stays close to linear.
func (me *CheckerState) mergePending() {
	for index, spans := range me.pending {
		slices.SortFunc(spans, func(a, b BlockSpan) int {
			return cmp.Compare(a.Begin, b.Begin)
		})
		for len(spans) > 1 {
			last := spans[len(spans)-1]
			secondLast := spans[len(spans)-2]
			merged, ok := mergeBlockSpans(last, secondLast)
			if !ok {
				// A gap remains, full coverage isn't possible yet.
				break
			}
			spans = append(spans[:len(spans)-2], merged)
		}
		me.pending[index] = spans
	}
}

// visitWholePieces runs the merge pass, then calls verify for every piece
// whose pending spans coalesced into exactly one span of the expected length
// and that hasn't already been confirmed good. expectedLen must return the
// true length for the given piece, which for the final piece of a torrent is
// usually less than the nominal piece length. An error from verify aborts
// the rest of the pass; verdicts collected before it are kept.
func (me *CheckerState) visitWholePieces(
	expectedLen func(index uint32) int64,
	verify func(b BlockSpan) (bool, error),
) error {
	me.mergePending()
	for _, index := range me.sortedPendingIndices() {
		spans := me.pending[index]
		if len(spans) != 1 || spans[0].Length != expectedLen(index) {
			continue
		}
		if me.good != nil && me.good.Contains(index) {
			// Already proven good in a prior pass. Redundant writes don't
			// warrant a re-hash.
			continue
		}
		ok, err := verify(spans[0])
		if err != nil {
			return err
		}
		me.undrained = append(me.undrained, Verdict{Index: index, Good: ok})
	}
	return nil
}

func (me *CheckerState) sortedPendingIndices() []uint32 {
	indices := make([]uint32, 0, len(me.pending))
	for index := range me.pending {
		indices = append(indices, index)
	}
	slices.Sort(indices)
	return indices
}

// DrainVerdicts passes every undrained verdict to f in the order they were
// computed, then promotes good ones into the confirmed set. Draining an
// empty state does nothing.
func (me *CheckerState) DrainVerdicts(f func(Verdict)) {
	for _, v := range me.undrained {
		f(v)
		if v.Good {
			if me.good == nil {
				me.good = roaring.NewBitmap()
			}
			me.good.Add(v.Index)
		}
	}
	me.undrained = me.undrained[:0]
}

// GoodBitmap returns a copy of the confirmed-good piece indices, suitable
// for seeding an availability bitfield.
func (me *CheckerState) GoodBitmap() *roaring.Bitmap {
	if me.good == nil {
		return roaring.NewBitmap()
	}
	return me.good.Clone()
}

func (me *CheckerState) Stats() (s Stats) {
	s.Pending = len(me.pending)
	if me.good != nil {
		s.ConfirmedGood = int(me.good.GetCardinality())
	}
	s.Undrained = len(me.undrained)
	return
}

// Wire form of CheckerState. Pending map keys are decimal piece indices
// because bencode dictionary keys are strings.
type checkerStateWire struct {
	Pending   map[string][]BlockSpan `bencode:"pending"`
	Good      []byte                 `bencode:"good"`
	Undrained []Verdict              `bencode:"undrained,omitempty"`
}

var (
	_ bencode.Marshaler   = (*CheckerState)(nil)
	_ bencode.Unmarshaler = (*CheckerState)(nil)
)

func (me *CheckerState) MarshalBencode() ([]byte, error) {
	var w checkerStateWire
	g.MakeMapWithCap(&w.Pending, len(me.pending))
	for index, spans := range me.pending {
		w.Pending[strconv.FormatUint(uint64(index), 10)] = spans
	}
	var err error
	w.Good, err = me.GoodBitmap().ToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing good piece bitmap: %w", err)
	}
	w.Undrained = me.undrained
	return bencode.Marshal(w)
}

func (me *CheckerState) UnmarshalBencode(b []byte) error {
	var w checkerStateWire
	if err := bencode.Unmarshal(b, &w); err != nil {
		return err
	}
	me.pending = make(map[uint32][]BlockSpan, len(w.Pending))
	for key, spans := range w.Pending {
		index, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return fmt.Errorf("bad pending piece index %q: %w", key, err)
		}
		me.pending[uint32(index)] = spans
	}
	me.good = roaring.NewBitmap()
	if len(w.Good) != 0 {
		if err := me.good.UnmarshalBinary(w.Good); err != nil {
			return fmt.Errorf("deserializing good piece bitmap: %w", err)
		}
	}
	me.undrained = w.Undrained
	return nil
}
