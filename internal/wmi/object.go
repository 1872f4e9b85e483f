package wmi

import "github.com/therealcain/SimplerWMI/internal/cim"

// Object is one materialized result row: an immutable mapping from
// case-sensitive property name to decoded value. Objects are fully
// populated before they are handed out and live independently of the
// cursor that produced them.
type Object struct {
	names []string
	props map[string]cim.Value
}

// ObjectSet is the result of one query call: one Object per row, in
// cursor order.
type ObjectSet []*Object

// Names returns the property names in the order the service declared
// them.
func (o *Object) Names() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.props)
}

// Value returns the raw decoded variant for a property.
func (o *Object) Value(name string) (cim.Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Property returns the scalar stored under name if its native type is
// exactly T. An absent property and a present property of a different
// native type both yield (zero, false) - the two outcomes are
// deliberately not distinguished, matching the behavior callers were
// built against.
func Property[T cim.Scalar](o *Object, name string) (T, bool) {
	v, ok := o.props[name]
	if !ok {
		var zero T
		return zero, false
	}
	return cim.ScalarOf[T](v)
}

// Array returns the sequence stored under name if its element type is
// exactly T, and an empty view otherwise (absent and wrong-typed are
// conflated, as with Property). The returned slice aliases the stored
// sequence; treat it as read-only.
func Array[T cim.Scalar](o *Object, name string) []T {
	v, ok := o.props[name]
	if !ok {
		return nil
	}
	s, ok := cim.SliceOf[T](v)
	if !ok {
		return nil
	}
	return s
}
