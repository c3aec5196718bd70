// Reader is the immutable side of the sparse index: a single ordered
// map from Delimiter to (block id, count), safe to share across
// goroutines without locking and cheap to share since nothing mutates
// it after construction: every holder can use the same *Reader.
package sparseindex

import (
	"sort"

	"github.com/google/btree"
)

// readerEntry is one row of the reader's map: a delimiter together
// with the block it starts and that block's key count.
type readerEntry struct {
	delim Delimiter
	block BlockID
	count uint32
}

func readerLess(a, b readerEntry) bool { return a.delim.Less(b.delim) }

// Reader is an immutable snapshot of a sparse index, produced by
// Writer.ToReader or DeserializeReader.
type Reader struct {
	entries *btree.BTreeG[readerEntry]
	degree  int
}

// Len returns the number of blocks in the index.
func (r *Reader) Len() int { return r.entries.Len() }

// BlockCount is an alias for Len, named for callers reading this as
// "how many blocks" rather than "how many map entries".
func (r *Reader) BlockCount() int { return r.Len() }

// Delimiters returns every delimiter in the index, in order. It is a
// read-only enumeration for callers building their own logic (e.g. a
// rank-style query) on top of the index without reaching into
// internals.
func (r *Reader) Delimiters() []Delimiter {
	out := make([]Delimiter, 0, r.Len())
	r.entries.Ascend(func(e readerEntry) bool {
		out = append(out, e.delim)
		return true
	})
	return out
}

func (r *Reader) orderedEntries() []readerEntry {
	out := make([]readerEntry, 0, r.Len())
	r.entries.Ascend(func(e readerEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// GetTargetBlockID returns the block id whose range contains
// searchKey: the greatest delimiter <= Key(searchKey). An empty reader
// is a bug in the collaborator (a Reader is never constructed empty)
// and panics rather than returning a zero value.
func (r *Reader) GetTargetBlockID(searchKey CompositeKey) BlockID {
	if r.entries.Len() == 0 {
		panic("sparseindex: GetTargetBlockID called on an empty reader")
	}
	target := readerEntry{delim: Key(searchKey)}
	var result BlockID
	found := false
	r.entries.DescendLessOrEqual(target, func(e readerEntry) bool {
		result = e.block
		found = true
		return false
	})
	if !found {
		panic("sparseindex: no delimiter <= search key; Start sentinel is missing")
	}
	return result
}

// GetAllTargetBlockIDs returns the deduplicated list of block ids that
// would be hit by any of keys, in the order the blocks appear in the
// index (not the order keys were given). It sorts keys once, then
// sweeps the index with a two-cursor window: for each block it
// consumes every query key that falls in [thisBlockStart,
// nextBlockStart), emitting the block's id at most once, and once the
// window runs out of later blocks every remaining key falls into the
// last one.
func (r *Reader) GetAllTargetBlockIDs(keys []CompositeKey) []BlockID {
	if len(keys) == 0 {
		return nil
	}
	sorted := make([]CompositeKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	entries := r.orderedEntries()
	n := len(entries)
	var result []BlockID

	ki := 0
	np := len(sorted)
	for bi := 0; bi < n && ki < np; bi++ {
		hasNext := bi+1 < n
		var nextDelim Delimiter
		if hasNext {
			nextDelim = entries[bi+1].delim
		}

		emitted := false
		for ki < np {
			k := Key(sorted[ki])
			if hasNext && !k.Less(nextDelim) {
				break
			}
			if !emitted {
				result = append(result, entries[bi].block)
				emitted = true
			}
			ki++
		}
	}
	return result
}

// delimPrefix returns a delimiter's prefix component and true, or
// ("", false) if the delimiter is Start (whose prefix is -∞ and so
// never matches a "strictly less than" comparison).
func delimPrefix(d Delimiter) (string, bool) {
	ck, ok := d.CompositeKey()
	if !ok {
		return "", false
	}
	return ck.Prefix, true
}

// delimPrefixBound is the Bound form of delimPrefix: Unbounded for
// Start, Included(prefix) otherwise.
func delimPrefixBound(d Delimiter) Bound {
	prefix, ok := delimPrefix(d)
	if !ok {
		return UnboundedBound()
	}
	return IncludedBound(prefix)
}

// GetBlockIDsForPrefixes returns the block ids of every block whose
// [start_prefix, end_prefix] range intersects prefixes, where
// end_prefix is the prefix component of the next block's start key (or
// +∞ for the last block) and the first block's start_prefix is -∞
// (its delimiter is Start). It sorts prefixes once, then sweeps the
// index: for each block it advances the prefix cursor past any prefix
// strictly less than the block's start prefix (irrelevant to every
// later block too, since both sequences are sorted), then emits the
// block if the prefix now at the cursor is <= the block's end prefix.
// Each block is emitted at most once.
func (r *Reader) GetBlockIDsForPrefixes(prefixes []string) []BlockID {
	if len(prefixes) == 0 {
		return nil
	}
	sorted := make([]string, len(prefixes))
	copy(sorted, prefixes)
	sort.Strings(sorted)

	entries := r.orderedEntries()
	n := len(entries)
	np := len(sorted)
	pi := 0
	var result []BlockID

	for bi := 0; bi < n; bi++ {
		if startPrefix, ok := delimPrefix(entries[bi].delim); ok {
			for pi < np && sorted[pi] < startPrefix {
				pi++
			}
		}
		if pi >= np {
			break
		}

		endPrefix, hasEnd := "", false
		if bi+1 < n {
			endPrefix, hasEnd = delimPrefix(entries[bi+1].delim)
		}

		if !hasEnd || sorted[pi] <= endPrefix {
			result = append(result, entries[bi].block)
		}
	}
	return result
}

// GetBlockIDsRange returns every block id whose prefix range overlaps
// query, in index order. The block-side range for a block starting at
// delimiter s with successor t is [prefix(s), prefix(t)] (both
// inclusive), with prefix(Start) = -∞ and a missing successor standing
// for +∞; overlap is the standard max(starts) <= min(ends) test over
// explicit bound types.
func (r *Reader) GetBlockIDsRange(query PrefixRange) []BlockID {
	entries := r.orderedEntries()
	n := len(entries)
	var result []BlockID

	for i := 0; i < n; i++ {
		blockStart := delimPrefixBound(entries[i].delim)
		blockEnd := UnboundedBound()
		if i+1 < n {
			blockEnd = delimPrefixBound(entries[i+1].delim)
		}
		if rangesOverlap(blockStart, blockEnd, query) {
			result = append(result, entries[i].block)
		}
	}
	return result
}

// Fork produces a new Writer seeded with an independent copy of this
// snapshot — forward and counts are rebuilt from the reader's entries,
// and reverse is freshly built from scratch, since a Reader keeps no
// reverse index of its own. Mutating the returned writer never
// affects r.
func (r *Reader) Fork() *Writer {
	degree := r.degree
	w := &Writer{
		forward: btree.NewG(degree, forwardLess),
		reverse: make(map[BlockID]Delimiter, r.Len()),
		counts:  btree.NewG(degree, countLess),
		filter:  newBloom(),
		logger:  (WriterConfig{}).logger(),
		degree:  degree,
	}
	r.entries.Ascend(func(e readerEntry) bool {
		w.forward.ReplaceOrInsert(forwardEntry{delim: e.delim, block: e.block})
		w.counts.ReplaceOrInsert(countEntry{delim: e.delim, count: e.count})
		w.reverse[e.block] = e.delim
		w.filter.Add(e.block)
		return true
	})
	return w
}

// IsValid is a self-check used in tests and by defensive callers. It
// returns true iff the first delimiter is Start and every adjacent
// pair of delimiters is strictly increasing.
func (r *Reader) IsValid() bool {
	if r.entries.Len() == 0 {
		return false
	}
	var prev Delimiter
	first := true
	valid := true
	r.entries.Ascend(func(e readerEntry) bool {
		if first {
			if !e.delim.IsStart() {
				valid = false
				return false
			}
			prev = e.delim
			first = false
			return true
		}
		if !prev.Less(e.delim) {
			valid = false
			return false
		}
		prev = e.delim
		return true
	})
	return valid
}
