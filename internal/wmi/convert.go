package wmi

import (
	"math"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// converter extracts a concretely-typed scalar from a tagged foreign
// value. Converters are pure and total for well-formed input: each reads
// exactly the width its tag declares, with no promotion and no range
// checking beyond what the source representation guarantees.
type converter func(*wbem.Variant) cim.Value

// stringConverter decodes the string family (string, datetime,
// reference). An absent foreign handle decodes to the empty string -
// a deliberate permissive policy, not an omission.
func stringConverter(v *wbem.Variant) cim.Value {
	return cim.String(v.Str.String())
}

// converters is the fixed conversion table: one entry per supported tag.
// It is intentionally not exhaustive over the protocol's tag space;
// a lookup miss is an unconditional unsupported-tag failure. Adding a
// tag is a one-line entry here plus a variant in cim.
var converters = map[cim.Type]converter{
	cim.TypeBoolean: func(v *wbem.Variant) cim.Value { return cim.Bool(v.Bool()) },
	cim.TypeSInt8:   func(v *wbem.Variant) cim.Value { return cim.SInt8(int8(uint8(v.Bits))) },
	cim.TypeUInt8:   func(v *wbem.Variant) cim.Value { return cim.UInt8(uint8(v.Bits)) },
	cim.TypeSInt16:  func(v *wbem.Variant) cim.Value { return cim.SInt16(int16(uint16(v.Bits))) },
	cim.TypeUInt16:  func(v *wbem.Variant) cim.Value { return cim.UInt16(uint16(v.Bits)) },
	cim.TypeSInt32:  func(v *wbem.Variant) cim.Value { return cim.SInt32(int32(uint32(v.Bits))) },
	cim.TypeUInt32:  func(v *wbem.Variant) cim.Value { return cim.UInt32(uint32(v.Bits)) },
	cim.TypeSInt64:  func(v *wbem.Variant) cim.Value { return cim.SInt64(int64(v.Bits)) },
	cim.TypeUInt64:  func(v *wbem.Variant) cim.Value { return cim.UInt64(v.Bits) },
	cim.TypeReal32:  func(v *wbem.Variant) cim.Value { return cim.Real32(math.Float32frombits(uint32(v.Bits))) },
	cim.TypeReal64:  func(v *wbem.Variant) cim.Value { return cim.Real64(math.Float64frombits(v.Bits)) },
	cim.TypeChar16:  func(v *wbem.Variant) cim.Value { return cim.Char16(uint16(v.Bits)) },

	cim.TypeString:    stringConverter,
	cim.TypeDateTime:  stringConverter,
	cim.TypeReference: stringConverter,
}

// convertVariant routes one tagged value to the scalar or array path,
// classifying on the tag's array flag.
func convertVariant(v *wbem.Variant, tag cim.Type) (cim.Value, error) {
	if tag.IsArray() {
		return convertArray(tag, v)
	}
	return convertScalar(tag, v)
}

// convertScalar decodes a scalar tagged value through the conversion
// table. The tag must already be a base tag; anything without a table
// entry fails as unsupported.
func convertScalar(tag cim.Type, v *wbem.Variant) (cim.Value, error) {
	conv, ok := converters[tag]
	if !ok {
		return nil, cim.NewUnsupportedTagError(tag)
	}
	return conv(v), nil
}
