package wmi

import (
	"encoding/binary"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// convertArray decodes a tagged value whose tag carries the array flag
// into the matching sequence variant.
//
// The base tag is looked up before the payload is touched: an unknown
// base fails as unsupported without ever locking the buffer. The payload
// must physically carry an array regardless of what the tag claims.
// The foreign buffer stays locked for the duration of the unpack and is
// unlocked on every exit path; element order matches buffer order and
// count == UBound-LBound+1, so an empty array decodes to an empty
// sequence, not a failure.
func convertArray(tag cim.Type, v *wbem.Variant) (cim.Value, error) {
	base := tag.Base()
	conv, ok := converters[base]
	if !ok {
		return nil, cim.NewUnsupportedTagError(tag)
	}
	if !v.HasArray() {
		return nil, cim.NewInvalidRepresentationError(tag, "tag claims an array but the payload does not carry one")
	}

	sa := v.Array
	sa.Lock()
	defer func() { _ = sa.Unlock() }()

	count := sa.Count()

	// String-family slots are independently-owned handles, decoded
	// directly (absent handle -> empty string). They never go through
	// the synthetic-scalar indirection used for fixed-width elements.
	if base.IsStringFamily() {
		if !sa.HasStrings() && count > 0 {
			return nil, cim.NewInvalidRepresentationError(tag, "array buffer holds no string handles")
		}
		out := make([]string, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, sa.Str(i).String())
		}
		return cim.StringArray(out), nil
	}

	width := wbem.ElemWidth(base)
	if sa.ByteLen() < count*width {
		return nil, cim.NewInvalidRepresentationError(tag, "array buffer shorter than its declared bounds")
	}
	elemVT := v.VT &^ wbem.VTArray

	switch base {
	case cim.TypeBoolean:
		return unpackFixed[bool](sa, tag, elemVT, width, conv, func(s []bool) cim.Value { return cim.BoolArray(s) })
	case cim.TypeSInt8:
		return unpackFixed[int8](sa, tag, elemVT, width, conv, func(s []int8) cim.Value { return cim.SInt8Array(s) })
	case cim.TypeUInt8:
		return unpackFixed[uint8](sa, tag, elemVT, width, conv, func(s []uint8) cim.Value { return cim.UInt8Array(s) })
	case cim.TypeSInt16:
		return unpackFixed[int16](sa, tag, elemVT, width, conv, func(s []int16) cim.Value { return cim.SInt16Array(s) })
	case cim.TypeUInt16:
		return unpackFixed[uint16](sa, tag, elemVT, width, conv, func(s []uint16) cim.Value { return cim.UInt16Array(s) })
	case cim.TypeSInt32:
		return unpackFixed[int32](sa, tag, elemVT, width, conv, func(s []int32) cim.Value { return cim.SInt32Array(s) })
	case cim.TypeUInt32:
		return unpackFixed[uint32](sa, tag, elemVT, width, conv, func(s []uint32) cim.Value { return cim.UInt32Array(s) })
	case cim.TypeSInt64:
		return unpackFixed[int64](sa, tag, elemVT, width, conv, func(s []int64) cim.Value { return cim.SInt64Array(s) })
	case cim.TypeUInt64:
		return unpackFixed[uint64](sa, tag, elemVT, width, conv, func(s []uint64) cim.Value { return cim.UInt64Array(s) })
	case cim.TypeReal32:
		return unpackFixed[float32](sa, tag, elemVT, width, conv, func(s []float32) cim.Value { return cim.Real32Array(s) })
	case cim.TypeReal64:
		return unpackFixed[float64](sa, tag, elemVT, width, conv, func(s []float64) cim.Value { return cim.Real64Array(s) })
	case cim.TypeChar16:
		return unpackFixed[cim.Char16](sa, tag, elemVT, width, conv, func(s []cim.Char16) cim.Value { return cim.Char16Array(s) })
	default:
		// Unreachable while the table and this switch agree; kept so a
		// future table entry without an unpack arm fails loudly instead
		// of reading a buffer at the wrong stride.
		return nil, cim.NewUnsupportedTagError(tag)
	}
}

// unpackFixed walks the raw buffer in ascending index order, rebuilding
// a synthetic single-element variant per slot and reusing the scalar
// converter for the base tag. The element count, stride and tag are only
// known at runtime, so every read goes through the slot view - the
// buffer is never reinterpreted as a native Go array.
func unpackFixed[T cim.Scalar](sa *wbem.SafeArray, tag cim.Type, vt wbem.VarType, width int, conv converter, wrap func([]T) cim.Value) (cim.Value, error) {
	count := sa.Count()
	out := make([]T, 0, count)
	for i := 0; i < count; i++ {
		elem := wbem.Variant{VT: vt, Bits: loadSlot(sa.Slot(i, width), width)}
		scalar, ok := cim.ScalarOf[T](conv(&elem))
		if !ok {
			return nil, cim.NewInvalidRepresentationError(tag, "converter produced a mismatched element type")
		}
		out = append(out, scalar)
	}
	return wrap(out), nil
}

// loadSlot reads one little-endian slot into the inline bit pattern.
func loadSlot(slot []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(slot[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(slot))
	case 4:
		return uint64(binary.LittleEndian.Uint32(slot))
	default:
		return binary.LittleEndian.Uint64(slot)
	}
}
