package wmi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/therealcain/SimplerWMI/internal/cim"
)

func testObject() *Object {
	return &Object{
		names: []string{"Name", "Cores", "Tags"},
		props: map[string]cim.Value{
			"Name":  cim.String("node-1"),
			"Cores": cim.UInt32(8),
			"Tags":  cim.StringArray{"a", "b"},
		},
	}
}

func TestPropertyTypedAccess(t *testing.T) {
	obj := testObject()

	name, ok := Property[string](obj, "Name")
	assert.True(t, ok)
	assert.Equal(t, "node-1", name)

	cores, ok := Property[uint32](obj, "Cores")
	assert.True(t, ok)
	assert.Equal(t, uint32(8), cores)
}

// TestPropertyConflatesAbsentAndWrongType pins the accessor contract:
// an absent property and a present property of a different native type
// produce the same observable "no value" result.
func TestPropertyConflatesAbsentAndWrongType(t *testing.T) {
	obj := testObject()

	absent, okAbsent := Property[uint32](obj, "DoesNotExist")
	wrongType, okWrong := Property[uint32](obj, "Name")

	assert.False(t, okAbsent)
	assert.False(t, okWrong)
	assert.Equal(t, absent, wrongType)
}

func TestArrayTypedAccess(t *testing.T) {
	obj := testObject()

	tags := Array[string](obj, "Tags")
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestArrayConflatesAbsentAndWrongType(t *testing.T) {
	obj := testObject()

	assert.Empty(t, Array[string](obj, "DoesNotExist"))
	assert.Empty(t, Array[uint32](obj, "Tags"))  // wrong element type
	assert.Empty(t, Array[string](obj, "Name")) // scalar, not a sequence
}

func TestObjectNamesKeepServiceOrder(t *testing.T) {
	obj := testObject()
	assert.Equal(t, []string{"Name", "Cores", "Tags"}, obj.Names())
	assert.Equal(t, 3, obj.Len())

	// Names returns a copy; mutating it does not touch the object.
	names := obj.Names()
	names[0] = "mutated"
	assert.Equal(t, "Name", obj.Names()[0])
}

func TestObjectValue(t *testing.T) {
	obj := testObject()

	v, ok := obj.Value("Cores")
	assert.True(t, ok)
	assert.Equal(t, cim.UInt32(8), v)

	_, ok = obj.Value("Nope")
	assert.False(t, ok)
}
