package wbem

import (
	"golang.org/x/text/encoding/unicode"
)

// utf16le is the wire encoding of service strings. Real providers hand
// out BSTR-style wide strings; keeping the handle in UTF-16LE preserves
// that representation until a caller asks for a Go string.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// BStr is a foreign wide-string handle. The payload is UTF-16LE code
// units without a terminator. A nil *BStr is a deliberate state: an
// absent handle, which decodes to the empty string rather than failing.
type BStr struct {
	b []byte
}

// NewBStr encodes a Go string into a wide-string handle.
func NewBStr(s string) *BStr {
	// Encoding a Go string cannot fail: invalid UTF-8 sequences are
	// replaced before the UTF-16 transform sees them.
	b, _ := utf16le.NewEncoder().Bytes([]byte(s))
	return &BStr{b: b}
}

// BStrFromBytes wraps raw UTF-16LE code units in a handle without
// copying. A nil slice yields a non-nil handle holding the empty string;
// use a nil *BStr for an absent handle.
func BStrFromBytes(b []byte) *BStr {
	return &BStr{b: b}
}

// String decodes the handle to a Go string. A nil handle decodes to "".
func (s *BStr) String() string {
	if s == nil {
		return ""
	}
	b, err := utf16le.NewDecoder().Bytes(s.b)
	if err != nil {
		// A malformed foreign payload decodes with replacement runes
		// rather than failing the whole property.
		return string(b)
	}
	return string(b)
}

// Bytes returns the raw UTF-16LE payload. Nil for a nil handle.
func (s *BStr) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}
