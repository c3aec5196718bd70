// Deterministic test-data generation via xxh3, standing in for
// math/rand wherever a test needs many distinct, reproducible
// composite keys (the property-style multi-point lookup tests)
// without the nondeterminism of a seeded PRNG across Go
// versions.
package sparseindex

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// deterministicPrefix turns a loop index into a short, stable prefix
// string by hashing it — two calls with the same n always produce the
// same prefix, which matters for a test asserting on exact ordering
// without hardcoding magic strings.
func deterministicPrefix(n int) string {
	h := xxh3.HashString(fmt.Sprintf("prefix-%d", n))
	return fmt.Sprintf("p%04x", uint16(h))
}

// deterministicKeys generates n distinct composite keys sharing
// prefix, each with a distinct deterministic uint32 key component.
func deterministicKeys(prefix string, n int) []CompositeKey {
	keys := make([]CompositeKey, n)
	for i := range n {
		h := xxh3.HashString(fmt.Sprintf("%s-%d", prefix, i))
		keys[i] = NewCompositeKey(prefix, Uint32Key(uint32(h)))
	}
	return keys
}
