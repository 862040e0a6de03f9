package piececheck

// BlockSpan identifies a contiguous range of bytes within a single piece.
// Blocks are the granularity at which writes land on disk; a piece is only
// hashable once its spans coalesce into one span covering the whole piece.
type BlockSpan struct {
	Index  uint32 `bencode:"i"`
	Begin  int64  `bencode:"b"`
	Length int64  `bencode:"l"`
}

func (me BlockSpan) End() int64 {
	return me.Begin + me.Length
}

// Merges two spans belonging to the same piece if their ranges overlap or
// touch end-to-end. The inclusive boundary check is what lets sequential
// block writes coalesce into a single span over repeated merges.
func mergeBlockSpans(a, b BlockSpan) (merged BlockSpan, ok bool) {
	if a.Index != b.Index {
		return
	}
	if (b.Begin < a.Begin || b.Begin > a.End()) && (a.Begin < b.Begin || a.Begin > b.End()) {
		// Disjoint with a gap.
		return
	}
	begin := min(a.Begin, b.Begin)
	end := max(a.End(), b.End())
	return BlockSpan{
		Index:  a.Index,
		Begin:  begin,
		Length: end - begin,
	}, true
}
