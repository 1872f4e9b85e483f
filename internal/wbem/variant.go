package wbem

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/therealcain/SimplerWMI/internal/cim"
)

// VarType is the runtime representation discriminator of a Variant. It
// is deliberately separate from cim.Type: the tag is what the service
// declares, the VarType is what the payload actually carries, and the
// array unpacker must verify the two agree before touching the buffer.
// Values mirror the VARIANT vt constants.
type VarType uint16

const (
	VTEmpty VarType = 0
	VTI2    VarType = 2
	VTI4    VarType = 3
	VTR4    VarType = 4
	VTR8    VarType = 5
	VTBStr  VarType = 8
	VTBool  VarType = 11
	VTI1    VarType = 16
	VTUI1   VarType = 17
	VTUI2   VarType = 18
	VTUI4   VarType = 19
	VTI8    VarType = 20
	VTUI8   VarType = 21

	// VTArray marks the payload as carrying a SafeArray.
	VTArray VarType = 0x2000
)

// Variant is a single property value as delivered by the service: a
// runtime representation plus either an inline fixed-width payload, a
// wide-string handle, or a foreign array buffer. Variants are owned by
// the row that produced them; the engine only reads.
type Variant struct {
	// VT is the runtime representation, VTArray flag included.
	VT VarType

	// Bits holds the inline payload of fixed-width scalars in the low
	// bits (sign/float bit patterns preserved).
	Bits uint64

	// Str is the string-family handle. Nil means an absent string.
	Str *BStr

	// Array is the foreign buffer when VT carries VTArray.
	Array *SafeArray
}

// Bool reads the inline payload as a VARIANT_BOOL: any non-zero pattern
// is true.
func (v *Variant) Bool() bool {
	return v.Bits != 0
}

// HasArray reports whether the runtime representation actually carries
// an array buffer, independent of what the tag claims.
func (v *Variant) HasArray() bool {
	return v.VT&VTArray != 0 && v.Array != nil
}

// varTypeFor maps a base tag to the runtime representation a well-formed
// provider uses for it.
var varTypeFor = map[cim.Type]VarType{
	cim.TypeBoolean:   VTBool,
	cim.TypeSInt8:     VTI1,
	cim.TypeUInt8:     VTUI1,
	cim.TypeSInt16:    VTI2,
	cim.TypeUInt16:    VTUI2,
	cim.TypeSInt32:    VTI4,
	cim.TypeUInt32:    VTUI4,
	cim.TypeSInt64:    VTI8,
	cim.TypeUInt64:    VTUI8,
	cim.TypeReal32:    VTR4,
	cim.TypeReal64:    VTR8,
	cim.TypeChar16:    VTUI2,
	cim.TypeString:    VTBStr,
	cim.TypeDateTime:  VTBStr,
	cim.TypeReference: VTBStr,
}

// VarTypeFor returns the runtime representation a well-formed provider
// uses for a base tag.
func VarTypeFor(base cim.Type) (VarType, bool) {
	vt, ok := varTypeFor[base]
	return vt, ok
}

// ElemWidth returns the fixed-width element stride in bytes for a base
// tag, or 0 for the string family. Booleans are 2 bytes (VARIANT_BOOL).
func ElemWidth(base cim.Type) int {
	switch base {
	case cim.TypeSInt8, cim.TypeUInt8:
		return 1
	case cim.TypeBoolean, cim.TypeSInt16, cim.TypeUInt16, cim.TypeChar16:
		return 2
	case cim.TypeSInt32, cim.TypeUInt32, cim.TypeReal32:
		return 4
	case cim.TypeSInt64, cim.TypeUInt64, cim.TypeReal64:
		return 8
	default:
		return 0
	}
}

// NewVariant encodes a native Go value into the foreign representation a
// well-formed provider would deliver for the given tag. Used by the
// local providers and by tests; the conversion engine itself never
// constructs Variants.
//
// Scalar tags take the matching native type (string family also accepts
// nil for an absent handle). Array tags take the matching native slice,
// or []*BStr for string-family arrays with absent slots.
func NewVariant(tag cim.Type, v any) (*Variant, error) {
	base := tag.Base()
	vt, ok := varTypeFor[base]
	if !ok {
		return nil, fmt.Errorf("encode: unsupported tag %s", tag)
	}

	if tag.IsArray() {
		sa, err := encodeArray(base, v)
		if err != nil {
			return nil, err
		}
		return &Variant{VT: vt | VTArray, Array: sa}, nil
	}

	return encodeScalar(base, vt, v)
}

// ZeroVariant returns the variant a provider delivers for a declared but
// unset property: zero bits for fixed-width scalars, an absent handle
// for the string family, an empty buffer for arrays.
func ZeroVariant(tag cim.Type) (*Variant, error) {
	base := tag.Base()
	vt, ok := varTypeFor[base]
	if !ok {
		return nil, fmt.Errorf("encode: unsupported tag %s", tag)
	}
	if tag.IsArray() {
		if base.IsStringFamily() {
			return &Variant{VT: vt | VTArray, Array: NewStringSafeArray(nil)}, nil
		}
		return &Variant{VT: vt | VTArray, Array: NewFixedSafeArray(nil, 0)}, nil
	}
	return &Variant{VT: vt}, nil
}

func encodeScalar(base cim.Type, vt VarType, v any) (*Variant, error) {
	if base.IsStringFamily() {
		switch s := v.(type) {
		case nil:
			return &Variant{VT: vt}, nil
		case string:
			return &Variant{VT: vt, Str: NewBStr(s)}, nil
		case *BStr:
			return &Variant{VT: vt, Str: s}, nil
		default:
			return nil, fmt.Errorf("encode: tag %s wants string, got %T", base, v)
		}
	}

	bits, err := scalarBits(base, v)
	if err != nil {
		return nil, err
	}
	return &Variant{VT: vt, Bits: bits}, nil
}

// scalarBits narrows a native scalar to the inline bit pattern for its
// tag. The native type must match the tag exactly - no promotion.
func scalarBits(base cim.Type, v any) (uint64, error) {
	switch base {
	case cim.TypeBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return 0xFFFF, nil // VARIANT_TRUE
			}
			return 0, nil
		}
	case cim.TypeSInt8:
		if n, ok := v.(int8); ok {
			return uint64(uint8(n)), nil
		}
	case cim.TypeUInt8:
		if n, ok := v.(uint8); ok {
			return uint64(n), nil
		}
	case cim.TypeSInt16:
		if n, ok := v.(int16); ok {
			return uint64(uint16(n)), nil
		}
	case cim.TypeUInt16:
		if n, ok := v.(uint16); ok {
			return uint64(n), nil
		}
	case cim.TypeSInt32:
		if n, ok := v.(int32); ok {
			return uint64(uint32(n)), nil
		}
	case cim.TypeUInt32:
		if n, ok := v.(uint32); ok {
			return uint64(n), nil
		}
	case cim.TypeSInt64:
		if n, ok := v.(int64); ok {
			return uint64(n), nil
		}
	case cim.TypeUInt64:
		if n, ok := v.(uint64); ok {
			return n, nil
		}
	case cim.TypeReal32:
		if f, ok := v.(float32); ok {
			return uint64(math.Float32bits(f)), nil
		}
	case cim.TypeReal64:
		if f, ok := v.(float64); ok {
			return math.Float64bits(f), nil
		}
	case cim.TypeChar16:
		if c, ok := v.(cim.Char16); ok {
			return uint64(c), nil
		}
	}
	return 0, fmt.Errorf("encode: tag %s does not accept %T", base, v)
}

func encodeArray(base cim.Type, v any) (*SafeArray, error) {
	if base.IsStringFamily() {
		switch s := v.(type) {
		case []string:
			strs := make([]*BStr, len(s))
			for i, elem := range s {
				strs[i] = NewBStr(elem)
			}
			return NewStringSafeArray(strs), nil
		case []*BStr:
			return NewStringSafeArray(s), nil
		default:
			return nil, fmt.Errorf("encode: tag %s[] wants []string, got %T", base, v)
		}
	}

	width := ElemWidth(base)
	var count int
	var data []byte

	pack := func(n int, put func(i int, slot []byte)) {
		count = n
		data = make([]byte, n*width)
		for i := 0; i < n; i++ {
			put(i, data[i*width:(i+1)*width])
		}
	}

	switch elems := v.(type) {
	case []bool:
		pack(len(elems), func(i int, slot []byte) {
			if elems[i] {
				binary.LittleEndian.PutUint16(slot, 0xFFFF)
			}
		})
	case []int8:
		pack(len(elems), func(i int, slot []byte) { slot[0] = uint8(elems[i]) })
	case []uint8:
		pack(len(elems), func(i int, slot []byte) { slot[0] = elems[i] })
	case []int16:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint16(slot, uint16(elems[i])) })
	case []uint16:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint16(slot, elems[i]) })
	case []int32:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint32(slot, uint32(elems[i])) })
	case []uint32:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint32(slot, elems[i]) })
	case []int64:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint64(slot, uint64(elems[i])) })
	case []uint64:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint64(slot, elems[i]) })
	case []float32:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint32(slot, math.Float32bits(elems[i])) })
	case []float64:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint64(slot, math.Float64bits(elems[i])) })
	case []cim.Char16:
		pack(len(elems), func(i int, slot []byte) { binary.LittleEndian.PutUint16(slot, uint16(elems[i])) })
	default:
		return nil, fmt.Errorf("encode: tag %s[] does not accept %T", base, v)
	}

	sa := NewFixedSafeArray(data, count)
	return sa, nil
}
