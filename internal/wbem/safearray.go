package wbem

import "fmt"

// SafeArray is a foreign array buffer with explicit lower/upper bounds.
// Fixed-width elements live in a single raw little-endian buffer whose
// element stride is known only from the value's tag; string-family
// elements are independently-owned BStr handles (nil allowed per slot).
//
// The buffer must be locked before element reads and unlocked on every
// exit path. LockCount exists so tests can assert the balance.
type SafeArray struct {
	// LBound and UBound are the inclusive index bounds. An empty array
	// has UBound == LBound-1.
	LBound int32
	UBound int32

	data  []byte
	strs  []*BStr
	locks int
	taken int // total Lock() calls, for balance assertions
}

// NewFixedSafeArray builds a buffer of count fixed-width elements packed
// little-endian in data. The stride is not recorded here - it is implied
// by the tag of the value that carries the array.
func NewFixedSafeArray(data []byte, count int) *SafeArray {
	return &SafeArray{LBound: 0, UBound: int32(count) - 1, data: data}
}

// NewStringSafeArray builds a buffer of string-family element handles.
func NewStringSafeArray(strs []*BStr) *SafeArray {
	return &SafeArray{LBound: 0, UBound: int32(len(strs)) - 1, strs: strs}
}

// Count returns the number of elements.
func (a *SafeArray) Count() int {
	return int(a.UBound - a.LBound + 1)
}

// Lock pins the buffer for element reads. Locks nest.
func (a *SafeArray) Lock() {
	a.locks++
	a.taken++
}

// Unlock releases one lock. Unlocking an unlocked buffer is a caller bug.
func (a *SafeArray) Unlock() error {
	if a.locks == 0 {
		return fmt.Errorf("safearray: unlock without matching lock")
	}
	a.locks--
	return nil
}

// Locked reports whether the buffer currently holds any lock.
func (a *SafeArray) Locked() bool {
	return a.locks > 0
}

// LockCount returns the total number of Lock calls made so far.
func (a *SafeArray) LockCount() int {
	return a.taken
}

// Slot returns the raw bytes of the i-th fixed-width element for the
// given stride. i is zero-based (bounds already folded into Count).
func (a *SafeArray) Slot(i, width int) []byte {
	return a.data[i*width : (i+1)*width]
}

// ByteLen returns the size of the raw fixed-width buffer in bytes.
func (a *SafeArray) ByteLen() int {
	return len(a.data)
}

// Raw returns the whole fixed-width buffer. Providers use it to
// serialize an array they built themselves; consumers of foreign
// buffers go through Lock and Slot instead.
func (a *SafeArray) Raw() []byte {
	return a.data
}

// Str returns the i-th string-family element handle. May be nil.
func (a *SafeArray) Str(i int) *BStr {
	return a.strs[i]
}

// HasStrings reports whether the buffer holds string-family handles.
func (a *SafeArray) HasStrings() bool {
	return a.strs != nil
}
