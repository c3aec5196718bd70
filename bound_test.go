// Prefix range overlap tests.
//
// GetBlockIDsRange's correctness rests entirely on rangesOverlap's
// closed-form max(starts) <= min(ends) computation. These tests check
// the boundary cases explicitly: exact-value ties between Included and
// Excluded bounds, and the Unbounded-always-overlaps shortcut.
package sparseindex

import "testing"

// TestRangesOverlapUnboundedAlwaysOverlaps verifies that a fully
// unbounded query always overlaps any block range, including one that
// is itself fully bounded to a single point.
func TestRangesOverlapUnboundedAlwaysOverlaps(t *testing.T) {
	query := FullPrefixRange()
	if !rangesOverlap(IncludedBound("m"), IncludedBound("m"), query) {
		t.Error("unbounded query should overlap a single-point block range")
	}
}

// TestRangesOverlapExactTieIncluded verifies that two Included bounds
// at the same value overlap (the range is a single point, not empty).
func TestRangesOverlapExactTieIncluded(t *testing.T) {
	blockStart, blockEnd := IncludedBound("m"), IncludedBound("z")
	query := ClosedPrefixRange("z", "zzz")
	if !rangesOverlap(blockStart, blockEnd, query) {
		t.Error("Included/Included tie at the same value should overlap")
	}
}

// TestRangesOverlapExactTieExcluded verifies that an Excluded bound
// meeting an Included bound at the same value does NOT overlap: the
// excluded side contributes no point at that value.
func TestRangesOverlapExactTieExcluded(t *testing.T) {
	blockStart, blockEnd := UnboundedBound(), ExcludedBound("m")
	query := PrefixRangeFrom("m")
	if rangesOverlap(blockStart, blockEnd, query) {
		t.Error("Excluded(m) should not overlap Included(m)")
	}
}

// TestRangesOverlapDisjoint verifies two ranges with no shared prefix
// space report no overlap.
func TestRangesOverlapDisjoint(t *testing.T) {
	blockStart, blockEnd := IncludedBound("a"), IncludedBound("c")
	query := PrefixRangeFrom("d")
	if rangesOverlap(blockStart, blockEnd, query) {
		t.Error("disjoint ranges should not overlap")
	}
}

// TestRangesOverlapContained verifies a query range fully inside a
// block's range overlaps.
func TestRangesOverlapContained(t *testing.T) {
	blockStart, blockEnd := IncludedBound("a"), IncludedBound("z")
	query := ClosedPrefixRange("m", "n")
	if !rangesOverlap(blockStart, blockEnd, query) {
		t.Error("contained range should overlap")
	}
}

// TestMaxStartPrefersMoreRestrictive verifies maxStart picks whichever
// of the two starts excludes more, keeping the winning query bound's
// Excluded flavor intact.
func TestMaxStartPrefersMoreRestrictive(t *testing.T) {
	got := maxStart(IncludedBound("m"), UnboundedBound())
	if got.Kind != Included || got.Value != "m" {
		t.Errorf("maxStart(Included(m), Unbounded) = %+v, want Included(m)", got)
	}

	got = maxStart(IncludedBound("a"), ExcludedBound("m"))
	if got.Kind != Excluded || got.Value != "m" {
		t.Errorf("maxStart(Included(a), Excluded(m)) = %+v, want Excluded(m)", got)
	}
}
