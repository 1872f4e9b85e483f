package cim

// Value is a sealed interface representing a decoded property value.
// Only the scalar variants (Bool, SInt8, ..., String) and their array
// counterparts (BoolArray, ..., StringArray) implement it. Exactly one
// variant is active at a time; no tag decodes to more than one variant.
type Value interface {
	cimValue() // Sealed - only these types implement it
}

// Char16 is a single UTF-16 code unit. It is a declared type rather than
// a bare uint16 so that char16 properties and uint16 properties cannot be
// confused through the typed accessors.
type Char16 uint16

// Scalar variants. Each is a defined type over its native representation;
// the string family (string, datetime, reference) all decode to String.

// Bool represents a boolean property value.
type Bool bool

func (Bool) cimValue() {}

// SInt8 represents an 8-bit signed integer property value.
type SInt8 int8

func (SInt8) cimValue() {}

// UInt8 represents an 8-bit unsigned integer property value.
type UInt8 uint8

func (UInt8) cimValue() {}

// SInt16 represents a 16-bit signed integer property value.
type SInt16 int16

func (SInt16) cimValue() {}

// UInt16 represents a 16-bit unsigned integer property value.
type UInt16 uint16

func (UInt16) cimValue() {}

// SInt32 represents a 32-bit signed integer property value.
type SInt32 int32

func (SInt32) cimValue() {}

// UInt32 represents a 32-bit unsigned integer property value.
type UInt32 uint32

func (UInt32) cimValue() {}

// SInt64 represents a 64-bit signed integer property value.
type SInt64 int64

func (SInt64) cimValue() {}

// UInt64 represents a 64-bit unsigned integer property value.
type UInt64 uint64

func (UInt64) cimValue() {}

// Real32 represents a 32-bit float property value.
type Real32 float32

func (Real32) cimValue() {}

// Real64 represents a 64-bit float property value.
type Real64 float64

func (Real64) cimValue() {}

func (Char16) cimValue() {}

// String represents a text property value. String, datetime and
// reference tags all decode to this variant.
type String string

func (String) cimValue() {}

// Array variants. Each holds an ordered sequence of its scalar's native
// type, in buffer order.

// BoolArray is an ordered sequence of boolean values.
type BoolArray []bool

func (BoolArray) cimValue() {}

// SInt8Array is an ordered sequence of 8-bit signed integers.
type SInt8Array []int8

func (SInt8Array) cimValue() {}

// UInt8Array is an ordered sequence of 8-bit unsigned integers.
type UInt8Array []uint8

func (UInt8Array) cimValue() {}

// SInt16Array is an ordered sequence of 16-bit signed integers.
type SInt16Array []int16

func (SInt16Array) cimValue() {}

// UInt16Array is an ordered sequence of 16-bit unsigned integers.
type UInt16Array []uint16

func (UInt16Array) cimValue() {}

// SInt32Array is an ordered sequence of 32-bit signed integers.
type SInt32Array []int32

func (SInt32Array) cimValue() {}

// UInt32Array is an ordered sequence of 32-bit unsigned integers.
type UInt32Array []uint32

func (UInt32Array) cimValue() {}

// SInt64Array is an ordered sequence of 64-bit signed integers.
type SInt64Array []int64

func (SInt64Array) cimValue() {}

// UInt64Array is an ordered sequence of 64-bit unsigned integers.
type UInt64Array []uint64

func (UInt64Array) cimValue() {}

// Real32Array is an ordered sequence of 32-bit floats.
type Real32Array []float32

func (Real32Array) cimValue() {}

// Real64Array is an ordered sequence of 64-bit floats.
type Real64Array []float64

func (Real64Array) cimValue() {}

// Char16Array is an ordered sequence of UTF-16 code units.
type Char16Array []Char16

func (Char16Array) cimValue() {}

// StringArray is an ordered sequence of text values.
type StringArray []string

func (StringArray) cimValue() {}

// Scalar is the constraint satisfied by the native type of every scalar
// variant. Char16 appears as itself so that char16 and uint16 remain
// distinct through the typed accessors.
type Scalar interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 |
		int64 | uint64 | float32 | float64 | Char16 | string
}

// ScalarOf returns the native scalar held by v if its native type is
// exactly T. An array variant, a nil Value, or any other native type all
// yield (zero, false).
func ScalarOf[T Scalar](v Value) (T, bool) {
	var zero T
	n, ok := nativeScalar(v)
	if !ok {
		return zero, false
	}
	t, ok := n.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// SliceOf returns the native element slice held by v if v is the array
// variant whose element type is exactly T. Anything else yields
// (nil, false). The returned slice aliases the stored sequence; callers
// must treat it as read-only.
func SliceOf[T Scalar](v Value) ([]T, bool) {
	n, ok := nativeSlice(v)
	if !ok {
		return nil, false
	}
	t, ok := n.([]T)
	if !ok {
		return nil, false
	}
	return t, true
}

// nativeScalar unwraps a scalar variant to its native type.
func nativeScalar(v Value) (any, bool) {
	switch x := v.(type) {
	case Bool:
		return bool(x), true
	case SInt8:
		return int8(x), true
	case UInt8:
		return uint8(x), true
	case SInt16:
		return int16(x), true
	case UInt16:
		return uint16(x), true
	case SInt32:
		return int32(x), true
	case UInt32:
		return uint32(x), true
	case SInt64:
		return int64(x), true
	case UInt64:
		return uint64(x), true
	case Real32:
		return float32(x), true
	case Real64:
		return float64(x), true
	case Char16:
		return x, true
	case String:
		return string(x), true
	default:
		return nil, false
	}
}

// nativeSlice unwraps an array variant to its native element slice.
func nativeSlice(v Value) (any, bool) {
	switch x := v.(type) {
	case BoolArray:
		return []bool(x), true
	case SInt8Array:
		return []int8(x), true
	case UInt8Array:
		return []uint8(x), true
	case SInt16Array:
		return []int16(x), true
	case UInt16Array:
		return []uint16(x), true
	case SInt32Array:
		return []int32(x), true
	case UInt32Array:
		return []uint32(x), true
	case SInt64Array:
		return []int64(x), true
	case UInt64Array:
		return []uint64(x), true
	case Real32Array:
		return []float32(x), true
	case Real64Array:
		return []float64(x), true
	case Char16Array:
		return []Char16(x), true
	case StringArray:
		return []string(x), true
	default:
		return nil, false
	}
}

// Native unwraps any variant to its native representation: the scalar
// itself or the element slice. Used for presentation (JSON output) where
// the variant wrapper is noise. Returns nil for a nil Value.
func Native(v Value) any {
	if n, ok := nativeScalar(v); ok {
		return n
	}
	if n, ok := nativeSlice(v); ok {
		return n
	}
	return nil
}
