package piececheck

import (
	"testing"

	qt "github.com/go-quicktest/qt"
)

func TestMergeBlockSpans(t *testing.T) {
	for _, tc := range []struct {
		name   string
		a, b   BlockSpan
		merged BlockSpan
		ok     bool
	}{
		{
			name:   "overlapping",
			a:      BlockSpan{0, 0, 60},
			b:      BlockSpan{0, 40, 60},
			merged: BlockSpan{0, 0, 100},
			ok:     true,
		},
		{
			name:   "adjacent end to end",
			a:      BlockSpan{0, 0, 50},
			b:      BlockSpan{0, 50, 50},
			merged: BlockSpan{0, 0, 100},
			ok:     true,
		},
		{
			name: "disjoint with gap",
			a:    BlockSpan{0, 0, 40},
			b:    BlockSpan{0, 50, 50},
		},
		{
			name:   "contained",
			a:      BlockSpan{0, 0, 100},
			b:      BlockSpan{0, 20, 30},
			merged: BlockSpan{0, 0, 100},
			ok:     true,
		},
		{
			name:   "identical",
			a:      BlockSpan{3, 10, 10},
			b:      BlockSpan{3, 10, 10},
			merged: BlockSpan{3, 10, 10},
			ok:     true,
		},
		{
			name: "different pieces",
			a:    BlockSpan{0, 0, 50},
			b:    BlockSpan{1, 50, 50},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			merged, ok := mergeBlockSpans(tc.a, tc.b)
			qt.Assert(t, qt.Equals(ok, tc.ok))
			if ok {
				qt.Assert(t, qt.Equals(merged, tc.merged))
			}
			// Merging is commutative.
			swapped, swappedOk := mergeBlockSpans(tc.b, tc.a)
			qt.Assert(t, qt.Equals(swappedOk, ok))
			if ok {
				qt.Assert(t, qt.Equals(swapped, merged))
				// The merged range covers both inputs.
				qt.Assert(t, qt.IsTrue(merged.Begin <= tc.a.Begin && merged.End() >= tc.a.End()))
				qt.Assert(t, qt.IsTrue(merged.Begin <= tc.b.Begin && merged.End() >= tc.b.End()))
			}
		})
	}
}
