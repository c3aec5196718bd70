package sparseindex

// BoundKind tags the three ways a PrefixRange endpoint can constrain a
// prefix string.
type BoundKind uint8

const (
	// Unbounded means the endpoint imposes no constraint.
	Unbounded BoundKind = iota
	// Included means the endpoint constrains at and including Value.
	Included
	// Excluded means the endpoint constrains strictly past Value.
	Excluded
)

// Bound is one endpoint of a PrefixRange.
type Bound struct {
	Kind  BoundKind
	Value string
}

// UnboundedBound returns an endpoint with no constraint.
func UnboundedBound() Bound { return Bound{Kind: Unbounded} }

// IncludedBound returns an inclusive endpoint at v.
func IncludedBound(v string) Bound { return Bound{Kind: Included, Value: v} }

// ExcludedBound returns an exclusive endpoint at v.
func ExcludedBound(v string) Bound { return Bound{Kind: Excluded, Value: v} }

// PrefixRange is an optionally half-open, optionally unbounded range
// over prefix strings — the query shape for GetBlockIDsRange.
type PrefixRange struct {
	Start Bound
	End   Bound
}

// FullPrefixRange returns the range over all prefixes.
func FullPrefixRange() PrefixRange {
	return PrefixRange{Start: UnboundedBound(), End: UnboundedBound()}
}

// PrefixRangeFrom returns a half-open range [start, +∞).
func PrefixRangeFrom(start string) PrefixRange {
	return PrefixRange{Start: IncludedBound(start), End: UnboundedBound()}
}

// PrefixRangeTo returns a half-open range (-∞, end).
func PrefixRangeTo(end string) PrefixRange {
	return PrefixRange{Start: UnboundedBound(), End: ExcludedBound(end)}
}

// PrefixRangeToInclusive returns a closed range (-∞, end].
func PrefixRangeToInclusive(end string) PrefixRange {
	return PrefixRange{Start: UnboundedBound(), End: IncludedBound(end)}
}

// ClosedPrefixRange returns a closed range [start, end].
func ClosedPrefixRange(start, end string) PrefixRange {
	return PrefixRange{Start: IncludedBound(start), End: IncludedBound(end)}
}

// maxStart computes the lower bound of the intersection of a block's
// own start bound (Unbounded, or Included at the block's start prefix)
// with the query's start bound, per spec's closed-form: the block
// bound wins (as an Included bound) whenever it is more restrictive
// than the query's, otherwise the query's own bound is kept verbatim
// (so its Included/Excluded flavor survives a tie).
func maxStart(blockStart, queryStart Bound) Bound {
	if blockStart.Kind == Unbounded {
		return queryStart
	}
	if queryStart.Kind == Unbounded || queryStart.Value < blockStart.Value {
		return blockStart
	}
	return queryStart
}

// minEnd is the symmetric computation of maxStart for the upper bound.
func minEnd(blockEnd, queryEnd Bound) Bound {
	if blockEnd.Kind == Unbounded {
		return queryEnd
	}
	if queryEnd.Kind == Unbounded || queryEnd.Value > blockEnd.Value {
		return blockEnd
	}
	return queryEnd
}

// boundsOverlap reports whether [lo, hi] (as constrained by their
// Kind) denotes a non-empty range: Included/Included compares with
// <=, any mix involving Excluded compares with <, and an Unbounded
// endpoint on either side always overlaps (an Unbounded lo or hi is
// only produced when both ranges being intersected already agreed on
// having no bound there, so it can never be the binding constraint).
func boundsOverlap(lo, hi Bound) bool {
	if lo.Kind == Unbounded || hi.Kind == Unbounded {
		return true
	}
	if lo.Kind == Included && hi.Kind == Included {
		return lo.Value <= hi.Value
	}
	return lo.Value < hi.Value
}

// rangesOverlap reports whether the block range [blockStart, blockEnd]
// (always closed at both ends, Unbounded standing in for an infinite
// endpoint) overlaps the query range.
func rangesOverlap(blockStart, blockEnd Bound, query PrefixRange) bool {
	lo := maxStart(blockStart, query.Start)
	hi := minEnd(blockEnd, query.End)
	return boundsOverlap(lo, hi)
}
