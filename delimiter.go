package sparseindex

import "fmt"

// delimiterKind tags the two Delimiter variants.
type delimiterKind uint8

const (
	delimiterStart delimiterKind = iota
	delimiterKey
)

// Delimiter is either the distinguished Start sentinel or a wrapped
// composite key. Start compares strictly below every wrapped key,
// which lets the first block in an index be addressed without
// materializing a synthetic "minus infinity" key.
type Delimiter struct {
	kind delimiterKind
	key  CompositeKey
}

// Start returns the sentinel delimiter, strictly less than every
// wrapped composite key.
func Start() Delimiter { return Delimiter{kind: delimiterStart} }

// Key wraps a composite key as a Delimiter.
func Key(k CompositeKey) Delimiter { return Delimiter{kind: delimiterKey, key: k} }

// IsStart reports whether d is the Start sentinel.
func (d Delimiter) IsStart() bool { return d.kind == delimiterStart }

// CompositeKey returns d's wrapped composite key and true, or the zero
// CompositeKey and false if d is Start.
func (d Delimiter) CompositeKey() (CompositeKey, bool) {
	if d.kind == delimiterStart {
		return CompositeKey{}, false
	}
	return d.key, true
}

// Compare returns -1, 0, or 1 as d orders before, equal to, or after
// other, under Start < Key(a) < Key(b) iff a < b.
func (d Delimiter) Compare(other Delimiter) int {
	if d.kind != other.kind {
		if d.kind == delimiterStart {
			return -1
		}
		if other.kind == delimiterStart {
			return 1
		}
	}
	if d.kind == delimiterStart {
		return 0
	}
	return d.key.Compare(other.key)
}

// Less reports whether d orders strictly before other.
func (d Delimiter) Less(other Delimiter) bool { return d.Compare(other) < 0 }

// Equal reports whether d and other are the same delimiter.
func (d Delimiter) Equal(other Delimiter) bool { return d.Compare(other) == 0 }

func (d Delimiter) String() string {
	if d.kind == delimiterStart {
		return "Start"
	}
	return fmt.Sprintf("Key(%s)", d.key.String())
}

// delimiterLess is the less-function google/btree needs for ordering
// Delimiter-keyed trees.
func delimiterLess(a, b Delimiter) bool { return a.Less(b) }
