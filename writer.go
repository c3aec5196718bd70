// Writer is the mutable side of the sparse index: a single exclusive
// mutex guarding three mutually-consistent maps (forward, reverse,
// counts), mutated by an enclosing compaction or flush one step at a
// time until it is frozen into a Reader by ToReader. The mutex exists
// only so the enclosing compaction can make short helper calls from
// within one logical session — it is not a concurrency primitive
// coordinating independent writers, since a Writer is owned by exactly
// one compaction at a time.
package sparseindex

import (
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"
)

// forwardEntry is one row of the writer's forward map: the delimiter
// and the block whose range it starts.
type forwardEntry struct {
	delim Delimiter
	block BlockID
}

func forwardLess(a, b forwardEntry) bool { return a.delim.Less(b.delim) }

// countEntry is one row of the writer's counts map.
type countEntry struct {
	delim Delimiter
	count uint32
}

func countLess(a, b countEntry) bool { return a.delim.Less(b.delim) }

// Replacement is one step of an ApplyUpdates batch: swap the block id
// at whatever delimiter oldID currently occupies.
type Replacement struct {
	OldID BlockID
	NewID BlockID
}

// Addition is one step of an ApplyUpdates batch: register a new block
// starting at StartKey.
type Addition struct {
	StartKey CompositeKey
	BlockID  BlockID
}

// Writer is the mutable builder for a sparse index, created with an
// initial block id and mutated via AddBlock, ReplaceBlock, RemoveBlock,
// ApplyUpdates, and SetCount until ToReader commits it.
type Writer struct {
	mu      sync.Mutex
	forward *btree.BTreeG[forwardEntry]
	reverse map[BlockID]Delimiter
	counts  *btree.BTreeG[countEntry]
	filter  *bloom
	logger  *zap.Logger
	degree  int
}

// NewWriter creates a writer with one entry, Start → initialBlockID,
// and no counts set.
func NewWriter(initialBlockID BlockID, config WriterConfig) *Writer {
	degree := config.degree()
	w := &Writer{
		forward: btree.NewG(degree, forwardLess),
		reverse: make(map[BlockID]Delimiter),
		counts:  btree.NewG(degree, countLess),
		filter:  newBloom(),
		logger:  config.logger(),
		degree:  degree,
	}
	w.forward.ReplaceOrInsert(forwardEntry{delim: Start(), block: initialBlockID})
	w.reverse[initialBlockID] = Start()
	w.filter.Add(initialBlockID)
	return w
}

// Len returns the number of blocks in the index.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.forward.Len()
}

func (w *Writer) blockExistsLocked(id BlockID) bool {
	if !w.filter.Contains(id) {
		return false
	}
	_, ok := w.reverse[id]
	return ok
}

// AddBlock registers a new block whose first key is startKey. It
// fails with ErrBlockIDExists if blockID is already registered.
//
// startKey must not already be a delimiter in the index — that
// precondition belongs to the caller (the blockfile's split logic).
// If it is violated, the new block replaces the old one in forward
// while the displaced block id keeps its stale reverse entry.
func (w *Writer) AddBlock(startKey CompositeKey, blockID BlockID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addBlockLocked(startKey, blockID)
}

func (w *Writer) addBlockLocked(startKey CompositeKey, blockID BlockID) error {
	if w.blockExistsLocked(blockID) {
		return ErrBlockIDExists
	}
	delim := Key(startKey)
	w.forward.ReplaceOrInsert(forwardEntry{delim: delim, block: blockID})
	w.reverse[blockID] = delim
	w.filter.Add(blockID)
	return nil
}

// ReplaceBlock swaps the block id at whatever delimiter oldID
// currently occupies, leaving the delimiter itself unchanged. If
// oldID is not registered, ReplaceBlock is a silent no-op — this
// simplifies callers that replace blocks speculatively during
// compaction.
func (w *Writer) ReplaceBlock(oldID, newID BlockID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaceBlockLocked(oldID, newID)
}

func (w *Writer) replaceBlockLocked(oldID, newID BlockID) {
	delim, ok := w.reverse[oldID]
	if !ok {
		return
	}
	delete(w.reverse, oldID)
	w.forward.ReplaceOrInsert(forwardEntry{delim: delim, block: newID})
	w.reverse[newID] = delim
	w.filter.Add(newID)
	// The counts entry is keyed by delim, which is unchanged by this
	// swap, so there is nothing further to migrate: it already refers
	// to the same delimiter under its new block id.
}

// ApplyUpdates performs every replacement, then every addition, under
// a single mutex acquisition. It is not transactional across that
// boundary: if an addition fails with ErrBlockIDExists, replacements
// already applied are not rolled back. Callers must treat a mid-batch
// failure as fatal for the enclosing compaction and discard the
// writer.
func (w *Writer) ApplyUpdates(replacements []Replacement, additions []Addition) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, r := range replacements {
		w.replaceBlockLocked(r.OldID, r.NewID)
	}
	for _, a := range additions {
		if err := w.addBlockLocked(a.StartKey, a.BlockID); err != nil {
			return err
		}
	}
	return nil
}

// SetCount records the key count for an existing block. It fails with
// ErrBlockIDDoesNotExist if blockID is not registered.
func (w *Writer) SetCount(blockID BlockID, count uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delim, ok := w.reverse[blockID]
	if !ok {
		return ErrBlockIDDoesNotExist
	}
	w.counts.ReplaceOrInsert(countEntry{delim: delim, count: count})
	return nil
}

// RemoveBlock removes blockID if doing so would leave at least one
// block behind; the writer refuses to become empty. It reports
// whether a removal occurred. A successful removal of the block at
// Start triggers start-key repair.
func (w *Writer) RemoveBlock(blockID BlockID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	delim, ok := w.reverse[blockID]
	if !ok {
		return false
	}
	if w.forward.Len() < 2 {
		return false
	}

	w.forward.Delete(forwardEntry{delim: delim})
	delete(w.reverse, blockID)
	w.counts.Delete(countEntry{delim: delim})

	w.repairStartKeyLocked()
	return true
}

// repairStartKeyLocked restores invariant (2) — forward's smallest key
// is Start — after a removal may have deleted the block that used to
// occupy it. If the new smallest delimiter isn't Start, its block id
// (and count, if already set) are moved under Start.
func (w *Writer) repairStartKeyLocked() {
	if w.forward.Len() == 0 {
		return
	}
	first, ok := w.forward.Min()
	if !ok || first.delim.IsStart() {
		return
	}

	w.forward.Delete(first)
	w.forward.ReplaceOrInsert(forwardEntry{delim: Start(), block: first.block})
	w.reverse[first.block] = Start()

	if ce, ok := w.counts.Get(countEntry{delim: first.delim}); ok {
		w.counts.Delete(countEntry{delim: first.delim})
		w.counts.ReplaceOrInsert(countEntry{delim: Start(), count: ce.count})
	}

	w.logger.Info("sparse index start key repair",
		zap.Stringer("block_id", first.block),
		zap.Stringer("old_delimiter", first.delim),
	)
}

// GetTargetBlockID returns the block id whose range contains
// searchKey: the greatest delimiter <= Key(searchKey). Calling this on
// an empty writer is a bug in the collaborator and panics rather than
// returning a zero value.
func (w *Writer) GetTargetBlockID(searchKey CompositeKey) BlockID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.getTargetBlockIDLocked(searchKey)
}

func (w *Writer) getTargetBlockIDLocked(searchKey CompositeKey) BlockID {
	if w.forward.Len() == 0 {
		panic("sparseindex: GetTargetBlockID called on an empty writer")
	}
	target := forwardEntry{delim: Key(searchKey)}
	var result BlockID
	found := false
	w.forward.DescendLessOrEqual(target, func(e forwardEntry) bool {
		result = e.block
		found = true
		return false
	})
	if !found {
		panic("sparseindex: no delimiter <= search key; Start sentinel is missing")
	}
	return result
}

// ToReader commits the writer: every block must have its count set,
// or this fails with ErrCountsNotSet. On success it produces an
// immutable Reader whose map merges forward and counts entry-for-
// entry in delimiter order; the writer is left usable afterward (it is
// not consumed), though callers should treat it as retired once
// committed.
func (w *Writer) ToReader() (*Reader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.forward.Len() != w.counts.Len() {
		return nil, ErrCountsNotSet
	}

	entries := btree.NewG(w.degree, readerLess)
	var commitErr error
	w.forward.Ascend(func(fe forwardEntry) bool {
		ce, ok := w.counts.Get(countEntry{delim: fe.delim})
		if !ok {
			commitErr = ErrCountsNotSet
			return false
		}
		entries.ReplaceOrInsert(readerEntry{delim: fe.delim, block: fe.block, count: ce.count})
		return true
	})
	if commitErr != nil {
		return nil, commitErr
	}

	return &Reader{entries: entries, degree: w.degree}, nil
}
