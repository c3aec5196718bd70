// Package sparseindex is the routing table for a log-structured,
// block-oriented key-value store.
//
// A blockfile partitions its ordered key space across a sequence of
// immutable blocks, each named by an opaque block identifier. The
// sparse index records, for every block, the smallest composite key it
// contains — one entry per block, not per key — so that any point or
// range query can pick the blocks to load without touching block
// contents.
//
// A Writer is the mutable side: it is built during a flush or
// compaction via AddBlock, ReplaceBlock, RemoveBlock, ApplyUpdates and
// SetCount, then frozen into a Reader with ToReader. A Reader is the
// immutable side: cheap to clone, safe to share across goroutines
// without locking, and the only half of the pair that is serializable.
// Reader.Fork produces a fresh Writer seeded with a reader's state —
// the copy-on-write seam the enclosing blockfile uses to version
// itself.
package sparseindex
