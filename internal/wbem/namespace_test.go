package wbem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealcain/SimplerWMI/internal/cim"
)

func newProcessorNamespace(t *testing.T) *Namespace {
	t.Helper()
	ns := NewNamespace("")
	cls, err := ns.AddClass("Win32_Processor",
		PropertyDef{Name: "Name", Type: cim.TypeString},
		PropertyDef{Name: "Cores", Type: cim.TypeUInt32},
		PropertyDef{Name: "Tags", Type: cim.TypeString | cim.FlagArray},
	)
	require.NoError(t, err)
	require.NoError(t, cls.AddInstance(map[string]any{
		"Name":  "node-1",
		"Cores": uint32(8),
		"Tags":  []string{"a", "b"},
	}))
	return ns
}

func TestNamespaceDefaults(t *testing.T) {
	ns := NewNamespace("")
	assert.Equal(t, `ROOT\CIMV2`, ns.Name)
}

func TestNamespaceDuplicateClass(t *testing.T) {
	ns := NewNamespace("")
	_, err := ns.AddClass("C")
	require.NoError(t, err)
	_, err = ns.AddClass("C")
	assert.Error(t, err)
}

func TestNamespaceDuplicateProperty(t *testing.T) {
	ns := NewNamespace("")
	_, err := ns.AddClass("C",
		PropertyDef{Name: "P", Type: cim.TypeUInt8},
		PropertyDef{Name: "P", Type: cim.TypeUInt16},
	)
	assert.Error(t, err)
}

func TestAddInstanceRejectsUndeclaredProperty(t *testing.T) {
	ns := NewNamespace("")
	cls, err := ns.AddClass("C", PropertyDef{Name: "P", Type: cim.TypeUInt8})
	require.NoError(t, err)
	assert.Error(t, cls.AddInstance(map[string]any{"Q": uint8(1)}))
}

func TestSessionQueryAllProperties(t *testing.T) {
	ns := newProcessorNamespace(t)
	sess, err := ns.Connect()
	require.NoError(t, err)
	defer sess.Close()

	cur, err := sess.ExecQuery("SELECT * FROM Win32_Processor")
	require.NoError(t, err)
	defer cur.Close()

	row, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	names, err := row.PropertyNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Cores", "Tags"}, names)

	v, tag, err := row.Get("Cores")
	require.NoError(t, err)
	assert.Equal(t, cim.TypeUInt32, tag)
	assert.Equal(t, uint64(8), v.Bits)

	_, ok, err = cur.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionQuerySelectedProperties(t *testing.T) {
	ns := newProcessorNamespace(t)
	sess, err := ns.Connect()
	require.NoError(t, err)

	cur, err := sess.ExecQuery("SELECT Cores,Name FROM Win32_Processor")
	require.NoError(t, err)

	row, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	names, err := row.PropertyNames()
	require.NoError(t, err)
	// Selected properties keep query order, not declaration order.
	assert.Equal(t, []string{"Cores", "Name"}, names)
}

func TestSessionQueryErrors(t *testing.T) {
	ns := newProcessorNamespace(t)
	sess, err := ns.Connect()
	require.NoError(t, err)

	_, err = sess.ExecQuery("garbage")
	assert.True(t, HasCode(err, ErrCodeQueryFailed))

	_, err = sess.ExecQuery("SELECT * FROM NoSuchClass")
	assert.True(t, HasCode(err, ErrCodeQueryFailed))

	_, err = sess.ExecQuery("SELECT Missing FROM Win32_Processor")
	assert.True(t, HasCode(err, ErrCodeQueryFailed))

	require.NoError(t, sess.Close())
	_, err = sess.ExecQuery("SELECT * FROM Win32_Processor")
	assert.True(t, HasCode(err, ErrCodeQueryFailed))
}

func TestRowGetUnknownProperty(t *testing.T) {
	ns := newProcessorNamespace(t)
	sess, err := ns.Connect()
	require.NoError(t, err)

	cur, err := sess.ExecQuery("SELECT * FROM Win32_Processor")
	require.NoError(t, err)
	row, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = row.Get("Nope")
	assert.True(t, HasCode(err, ErrCodePropertyFailed))
}

func TestUnsetPropertyGetsZeroVariant(t *testing.T) {
	ns := NewNamespace("")
	cls, err := ns.AddClass("C",
		PropertyDef{Name: "S", Type: cim.TypeString},
		PropertyDef{Name: "N", Type: cim.TypeUInt32},
	)
	require.NoError(t, err)
	require.NoError(t, cls.AddInstance(map[string]any{}))

	sess, err := ns.Connect()
	require.NoError(t, err)
	cur, err := sess.ExecQuery("SELECT * FROM C")
	require.NoError(t, err)
	row, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	v, _, err := row.Get("S")
	require.NoError(t, err)
	assert.Nil(t, v.Str) // absent handle, decodes to ""

	v, _, err = row.Get("N")
	require.NoError(t, err)
	assert.Zero(t, v.Bits)
}
