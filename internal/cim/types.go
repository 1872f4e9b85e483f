package cim

import "fmt"

// Type is the service's wire-level type tag for a property value.
// The numeric values mirror the CIMTYPE constants of the WBEM protocol,
// so tags received from a real service can be used directly.
type Type uint32

// Base scalar tags. Together with FlagArray these are the only tags the
// conversion engine understands; anything else is an unsupported tag.
const (
	TypeSInt16    Type = 2
	TypeSInt32    Type = 3
	TypeReal32    Type = 4
	TypeReal64    Type = 5
	TypeString    Type = 8
	TypeBoolean   Type = 11
	TypeSInt8     Type = 16
	TypeUInt8     Type = 17
	TypeUInt16    Type = 18
	TypeUInt32    Type = 19
	TypeSInt64    Type = 20
	TypeUInt64    Type = 21
	TypeDateTime  Type = 101
	TypeReference Type = 102
	TypeChar16    Type = 103
)

// FlagArray marks a tag as "ordered sequence of the base scalar".
// It is a single bit orthogonal to the base tag; strip it with Base()
// before any table lookup.
const FlagArray Type = 0x2000

// Base returns the tag with the array flag stripped.
func (t Type) Base() Type {
	return t &^ FlagArray
}

// IsArray reports whether the array flag is set.
func (t Type) IsArray() bool {
	return t&FlagArray != 0
}

// IsStringFamily reports whether the tag's base decodes to text
// (string, datetime and reference all do).
func (t Type) IsStringFamily() bool {
	switch t.Base() {
	case TypeString, TypeDateTime, TypeReference:
		return true
	}
	return false
}

// typeNames maps base tags to their canonical spelling. These are the
// spellings accepted by ParseType and used in schema files.
var typeNames = map[Type]string{
	TypeBoolean:   "boolean",
	TypeSInt8:     "sint8",
	TypeUInt8:     "uint8",
	TypeSInt16:    "sint16",
	TypeUInt16:    "uint16",
	TypeSInt32:    "sint32",
	TypeUInt32:    "uint32",
	TypeSInt64:    "sint64",
	TypeUInt64:    "uint64",
	TypeReal32:    "real32",
	TypeReal64:    "real64",
	TypeChar16:    "char16",
	TypeString:    "string",
	TypeDateTime:  "datetime",
	TypeReference: "reference",
}

// String returns the canonical name of the tag, with "[]" appended for
// array tags. Unknown tags render as their numeric value.
func (t Type) String() string {
	name, ok := typeNames[t.Base()]
	if !ok {
		return fmt.Sprintf("cim.Type(%d)", uint32(t))
	}
	if t.IsArray() {
		return name + "[]"
	}
	return name
}

// ParseType parses a canonical type name ("uint32", "string[]", ...)
// into a tag. The "[]" suffix sets FlagArray.
func ParseType(s string) (Type, error) {
	name := s
	array := false
	if len(name) > 2 && name[len(name)-2:] == "[]" {
		array = true
		name = name[:len(name)-2]
	}
	for t, n := range typeNames {
		if n == name {
			if array {
				return t | FlagArray, nil
			}
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown CIM type name %q", s)
}
