// Composite key contract consumed by the sparse index: an ordered pair
// of (prefix, typed key) with a total order over prefix first, typed
// key second. The index treats this package as the owner of the
// contract since no other collaborator in this repo defines it, but it
// is kept in its own file precisely because it is a contract boundary,
// not core sparse-index logic.
package sparseindex

import (
	"fmt"
	"math"
)

// ScalarKind identifies which variant a TypedKey holds.
type ScalarKind uint8

const (
	ScalarString ScalarKind = iota
	ScalarBool
	ScalarUint32
	ScalarFloat32
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarBool:
		return "bool"
	case ScalarUint32:
		return "uint32"
	case ScalarFloat32:
		return "float32"
	default:
		return fmt.Sprintf("ScalarKind(%d)", uint8(k))
	}
}

// TypedKey is a tagged union over the scalar types a composite key's
// typed component may hold. The zero value is the empty string.
type TypedKey struct {
	kind ScalarKind
	str  string
	b    bool
	u32  uint32
	f32  float32
}

// StringKey wraps a string as a TypedKey.
func StringKey(s string) TypedKey { return TypedKey{kind: ScalarString, str: s} }

// BoolKey wraps a bool as a TypedKey.
func BoolKey(b bool) TypedKey { return TypedKey{kind: ScalarBool, b: b} }

// Uint32Key wraps a uint32 as a TypedKey.
func Uint32Key(u uint32) TypedKey { return TypedKey{kind: ScalarUint32, u32: u} }

// Float32Key wraps a float32 as a TypedKey.
func Float32Key(f float32) TypedKey { return TypedKey{kind: ScalarFloat32, f32: f} }

// Kind reports which scalar variant k holds.
func (k TypedKey) Kind() ScalarKind { return k.kind }

// StringValue returns the wrapped string. Only meaningful when Kind()
// is ScalarString.
func (k TypedKey) StringValue() string { return k.str }

// BoolValue returns the wrapped bool. Only meaningful when Kind() is
// ScalarBool.
func (k TypedKey) BoolValue() bool { return k.b }

// Uint32Value returns the wrapped uint32. Only meaningful when Kind()
// is ScalarUint32.
func (k TypedKey) Uint32Value() uint32 { return k.u32 }

// Float32Value returns the wrapped float32. Only meaningful when Kind()
// is ScalarFloat32.
func (k TypedKey) Float32Value() float32 { return k.f32 }

// float32TotalOrderKey maps a float32's bits onto a uint32 such that
// unsigned comparison of the results matches IEEE-754's total order:
// -NaN < -Inf < ... < -0 < +0 < ... < +Inf < +NaN. This is what lets
// TypedKey treat equal bit patterns (including distinct NaN payloads
// compared to themselves) as equal while still giving every bit
// pattern a defined place in the order, per the composite key
// contract's requirement that NaN handling be well-defined rather than
// reflect IEEE-754 unordered-comparison semantics.
func float32TotalOrderKey(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&0x8000_0000 != 0 {
		return ^bits
	}
	return bits | 0x8000_0000
}

// Compare returns -1, 0, or 1 as k is less than, equal to, or greater
// than other. Values of different kinds compare by a fixed kind rank
// (string < bool < uint32 < float32) ahead of their contents; this
// never arises from a single well-typed blockfile, but keeps Compare
// total for any pair of TypedKey values.
func (k TypedKey) Compare(other TypedKey) int {
	if k.kind != other.kind {
		if k.kind < other.kind {
			return -1
		}
		return 1
	}
	switch k.kind {
	case ScalarString:
		switch {
		case k.str < other.str:
			return -1
		case k.str > other.str:
			return 1
		default:
			return 0
		}
	case ScalarBool:
		if k.b == other.b {
			return 0
		}
		if !k.b {
			return -1
		}
		return 1
	case ScalarUint32:
		switch {
		case k.u32 < other.u32:
			return -1
		case k.u32 > other.u32:
			return 1
		default:
			return 0
		}
	case ScalarFloat32:
		a, b := float32TotalOrderKey(k.f32), float32TotalOrderKey(other.f32)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// Equal reports whether k and other are the same kind and value, using
// bit-pattern equality for floats.
func (k TypedKey) Equal(other TypedKey) bool { return k.Compare(other) == 0 }

func (k TypedKey) String() string {
	switch k.kind {
	case ScalarString:
		return k.str
	case ScalarBool:
		return fmt.Sprintf("%t", k.b)
	case ScalarUint32:
		return fmt.Sprintf("%d", k.u32)
	case ScalarFloat32:
		return fmt.Sprintf("%g", k.f32)
	default:
		return ""
	}
}

// CompositeKey is the sort key of the blockfile: a prefix string
// followed by a typed scalar, ordered lexicographically by prefix
// first and typed key second.
type CompositeKey struct {
	Prefix string
	Key    TypedKey
}

// NewCompositeKey builds a CompositeKey from a prefix and typed key.
func NewCompositeKey(prefix string, key TypedKey) CompositeKey {
	return CompositeKey{Prefix: prefix, Key: key}
}

// Compare returns -1, 0, or 1 as k orders before, equal to, or after
// other: prefix compared first, typed key second.
func (k CompositeKey) Compare(other CompositeKey) int {
	if c := compareStrings(k.Prefix, other.Prefix); c != 0 {
		return c
	}
	return k.Key.Compare(other.Key)
}

// Less reports whether k orders strictly before other.
func (k CompositeKey) Less(other CompositeKey) bool { return k.Compare(other) < 0 }

// Equal reports whether k and other are the same composite key.
func (k CompositeKey) Equal(other CompositeKey) bool { return k.Compare(other) == 0 }

func (k CompositeKey) String() string {
	return fmt.Sprintf("%s/%s", k.Prefix, k.Key.String())
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
