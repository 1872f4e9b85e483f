package wmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

func newTestClient(t *testing.T, ns *wbem.Namespace) *Client {
	t.Helper()
	sess, err := ns.Connect()
	require.NoError(t, err)
	return NewClient(sess, WithTokenGenerator(NewFixedGenerator("call-1", "call-2", "call-3")))
}

func processorNamespace(t *testing.T) *wbem.Namespace {
	t.Helper()
	ns := wbem.NewNamespace("")
	cls, err := ns.AddClass("Win32_Processor",
		wbem.PropertyDef{Name: "Name", Type: cim.TypeString},
		wbem.PropertyDef{Name: "Cores", Type: cim.TypeUInt32},
		wbem.PropertyDef{Name: "Tags", Type: cim.TypeString | cim.FlagArray},
	)
	require.NoError(t, err)
	require.NoError(t, cls.AddInstance(map[string]any{
		"Name":  "node-1",
		"Cores": uint32(8),
		"Tags":  []string{"a", "b"},
	}))
	return ns
}

// TestQueryEndToEnd is the reference scenario: one row with a string, a
// uint32 and a string array materializes with exact typed access, and a
// wrong-typed probe yields no value.
func TestQueryEndToEnd(t *testing.T) {
	client := newTestClient(t, processorNamespace(t))
	defer client.Close()

	objects, err := client.Query("Win32_Processor")
	require.NoError(t, err)
	require.Len(t, objects, 1)

	obj := objects[0]
	name, ok := Property[string](obj, "Name")
	assert.True(t, ok)
	assert.Equal(t, "node-1", name)

	cores, ok := Property[uint32](obj, "Cores")
	assert.True(t, ok)
	assert.Equal(t, uint32(8), cores)

	assert.Equal(t, []string{"a", "b"}, Array[string](obj, "Tags"))

	_, ok = Property[uint32](obj, "Name") // wrong type
	assert.False(t, ok)
}

func TestQuerySelectedProperties(t *testing.T) {
	client := newTestClient(t, processorNamespace(t))
	defer client.Close()

	objects, err := client.Query("Win32_Processor", "Cores", "Name")
	require.NoError(t, err)
	require.Len(t, objects, 1)

	obj := objects[0]
	assert.Equal(t, []string{"Cores", "Name"}, obj.Names())
	assert.Empty(t, Array[string](obj, "Tags")) // not selected
}

func TestQueryZeroRows(t *testing.T) {
	ns := wbem.NewNamespace("")
	_, err := ns.AddClass("Win32_TapeDrive",
		wbem.PropertyDef{Name: "Name", Type: cim.TypeString},
	)
	require.NoError(t, err)

	client := newTestClient(t, ns)
	defer client.Close()

	objects, err := client.Query("Win32_TapeDrive")
	require.NoError(t, err)
	assert.Empty(t, objects)
	assert.NotNil(t, objects)
}

func TestQueryUnknownClassFails(t *testing.T) {
	client := newTestClient(t, processorNamespace(t))
	defer client.Close()

	_, err := client.Query("NoSuchClass")
	require.Error(t, err)
	assert.True(t, wbem.HasCode(err, wbem.ErrCodeQueryFailed))
}

func TestQueryConversionFailureAbortsWholeCall(t *testing.T) {
	// One good instance, then one carrying CIM_OBJECT (13), a tag
	// outside the supported set. The call is all-or-nothing.
	ns := wbem.NewNamespace("")
	cls, err := ns.AddClass("Win32_Processor",
		wbem.PropertyDef{Name: "Name", Type: cim.TypeString},
		wbem.PropertyDef{Name: "Blob", Type: cim.Type(13)},
	)
	require.NoError(t, err)

	goodName, err := wbem.NewVariant(cim.TypeString, "node-1")
	require.NoError(t, err)
	goodBlob, err := wbem.NewVariant(cim.TypeString, "ok")
	require.NoError(t, err)
	badName, err := wbem.NewVariant(cim.TypeString, "node-2")
	require.NoError(t, err)
	badBlob, err := wbem.NewVariant(cim.TypeString, "opaque")
	require.NoError(t, err)

	// Blob is declared with an unsupported tag, so every row fails at
	// Blob regardless of its payload. Two rows prove no partial set
	// escapes.
	cls.AddRawInstance(map[string]*wbem.Variant{"Name": goodName, "Blob": goodBlob})
	cls.AddRawInstance(map[string]*wbem.Variant{"Name": badName, "Blob": badBlob})

	client := newTestClient(t, ns)
	defer client.Close()

	objects, err := client.Query("Win32_Processor")
	require.Error(t, err)
	assert.True(t, cim.IsUnsupportedTag(err))
	assert.Nil(t, objects)
}

func TestQueryPropertyFetchFailure(t *testing.T) {
	ns := wbem.NewNamespace("")
	cls, err := ns.AddClass("C",
		wbem.PropertyDef{Name: "P", Type: cim.TypeUInt32},
		wbem.PropertyDef{Name: "Q", Type: cim.TypeUInt32},
	)
	require.NoError(t, err)
	pVar, err := wbem.NewVariant(cim.TypeUInt32, uint32(1))
	require.NoError(t, err)
	// Q is declared but has no value: the provider fails the fetch.
	cls.AddRawInstance(map[string]*wbem.Variant{"P": pVar})

	client := newTestClient(t, ns)
	defer client.Close()

	_, err = client.Query("C")
	require.Error(t, err)
	assert.True(t, wbem.HasCode(err, wbem.ErrCodePropertyFailed))
}

// failingCursor yields the rows of an inner cursor, then fails instead
// of reporting exhaustion.
type failingCursor struct {
	inner wbem.Cursor
}

func (c *failingCursor) Next() (wbem.Row, bool, error) {
	row, ok, err := c.inner.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, wbem.NewCursorError("connection reset mid-enumeration", nil)
	}
	return row, true, nil
}

func (c *failingCursor) Close() error { return c.inner.Close() }

// failingSession wraps a session so every cursor fails after its real
// rows are exhausted.
type failingSession struct {
	inner wbem.Session
}

func (s *failingSession) ExecQuery(text string) (wbem.Cursor, error) {
	cur, err := s.inner.ExecQuery(text)
	if err != nil {
		return nil, err
	}
	return &failingCursor{inner: cur}, nil
}

func (s *failingSession) Close() error { return s.inner.Close() }

func TestQueryCursorFailureDiscardsPartialSet(t *testing.T) {
	ns := processorNamespace(t)
	sess, err := ns.Connect()
	require.NoError(t, err)

	client := NewClient(&failingSession{inner: sess},
		WithTokenGenerator(NewFixedGenerator("call-1")))
	defer client.Close()

	// One good row materializes before the cursor fails; the caller
	// must see the failure, not the partial set.
	objects, err := client.Query("Win32_Processor")
	require.Error(t, err)
	assert.True(t, wbem.HasCode(err, wbem.ErrCodeCursorFailed))
	assert.Nil(t, objects)
}

// duplicateNameRow reports the same property name twice; the engine must
// insert silently with the last write winning and no doubled name.
type duplicateNameRow struct {
	variant *wbem.Variant
	tag     cim.Type
}

func (r *duplicateNameRow) PropertyNames() ([]string, error) {
	return []string{"P", "P"}, nil
}

func (r *duplicateNameRow) Get(string) (*wbem.Variant, cim.Type, error) {
	return r.variant, r.tag, nil
}

func (r *duplicateNameRow) Close() error { return nil }

func TestMaterializeRowDuplicateNameOverwritesSilently(t *testing.T) {
	v, err := wbem.NewVariant(cim.TypeUInt32, uint32(5))
	require.NoError(t, err)

	obj, err := materializeRow(&duplicateNameRow{variant: v, tag: cim.TypeUInt32})
	require.NoError(t, err)
	assert.Equal(t, []string{"P"}, obj.Names())

	got, ok := Property[uint32](obj, "P")
	assert.True(t, ok)
	assert.Equal(t, uint32(5), got)
}
