package sparseindex

import "github.com/google/uuid"

// BlockID is an opaque 128-bit block identifier, assumed globally
// unique across the lifetime of the enclosing blockfile. It is a
// distinct named type over uuid.UUID rather than a bare alias so that
// the sparse index's public surface never leaks a dependency on how
// block ids happen to be generated.
type BlockID uuid.UUID

// NewBlockID generates a fresh, globally-unique block id.
func NewBlockID() BlockID { return BlockID(uuid.New()) }

// Nil is the zero BlockID. It is never assigned to a real block; it is
// useful as a sentinel in tests and zero-value checks.
var Nil = BlockID(uuid.Nil)

func (b BlockID) String() string { return uuid.UUID(b).String() }

// BlockIDFromString parses the canonical UUID string form of a block
// id, as produced by String().
func BlockIDFromString(s string) (BlockID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return BlockID{}, err
	}
	return BlockID(u), nil
}
