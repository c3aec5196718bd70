package sparseindex

import "go.uber.org/zap"

// defaultBTreeDegree is used whenever BTreeDegree is left unset, so a
// zero-value WriterConfig or ReaderConfig is usable as-is.
const defaultBTreeDegree = 32

// WriterConfig configures a Writer. The zero value is a usable
// default: a degree-32 tree and a no-op logger.
type WriterConfig struct {
	// BTreeDegree sets the backing btree.BTreeG degree. Zero selects
	// defaultBTreeDegree.
	BTreeDegree int

	// Logger receives the informational trace RemoveBlock emits when
	// start-key repair fires. Nil selects a no-op logger, matching
	// spec's "nothing is logged at error severity by this component"
	// policy for every other writer operation.
	Logger *zap.Logger
}

func (c WriterConfig) degree() int {
	if c.BTreeDegree <= 0 {
		return defaultBTreeDegree
	}
	return c.BTreeDegree
}

func (c WriterConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ReaderConfig configures a Reader produced by DeserializeReader. Readers
// never log, so this carries only the tree's performance knob.
type ReaderConfig struct {
	// BTreeDegree sets the backing btree.BTreeG degree. Zero selects
	// defaultBTreeDegree.
	BTreeDegree int
}

func (c ReaderConfig) degree() int {
	if c.BTreeDegree <= 0 {
		return defaultBTreeDegree
	}
	return c.BTreeDegree
}
