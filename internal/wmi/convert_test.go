package wmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// TestConvertScalarAllTags covers every supported scalar conversion:
// a well-formed payload decodes to exactly the variant its tag names.
func TestConvertScalarAllTags(t *testing.T) {
	tests := []struct {
		tag    cim.Type
		native any
		want   cim.Value
	}{
		{cim.TypeBoolean, true, cim.Bool(true)},
		{cim.TypeSInt8, int8(-5), cim.SInt8(-5)},
		{cim.TypeUInt8, uint8(200), cim.UInt8(200)},
		{cim.TypeSInt16, int16(-300), cim.SInt16(-300)},
		{cim.TypeUInt16, uint16(65000), cim.UInt16(65000)},
		{cim.TypeSInt32, int32(-70000), cim.SInt32(-70000)},
		{cim.TypeUInt32, uint32(8), cim.UInt32(8)},
		{cim.TypeSInt64, int64(-1 << 40), cim.SInt64(-1 << 40)},
		{cim.TypeUInt64, uint64(1 << 63), cim.UInt64(1 << 63)},
		{cim.TypeReal32, float32(1.5), cim.Real32(1.5)},
		{cim.TypeReal64, float64(-2.25), cim.Real64(-2.25)},
		{cim.TypeChar16, cim.Char16('Ω'), cim.Char16('Ω')},
		{cim.TypeString, "node-1", cim.String("node-1")},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			v, err := wbem.NewVariant(tt.tag, tt.native)
			require.NoError(t, err)

			got, err := convertScalar(tt.tag, v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertScalarStringFamilySharesDecoder(t *testing.T) {
	for _, tag := range []cim.Type{cim.TypeString, cim.TypeDateTime, cim.TypeReference} {
		t.Run(tag.String(), func(t *testing.T) {
			v, err := wbem.NewVariant(tag, "ref:Win32_Process.Handle=4")
			require.NoError(t, err)

			got, err := convertScalar(tag, v)
			require.NoError(t, err)
			assert.Equal(t, cim.String("ref:Win32_Process.Handle=4"), got)
		})
	}
}

func TestConvertScalarNilStringHandle(t *testing.T) {
	for _, tag := range []cim.Type{cim.TypeString, cim.TypeDateTime, cim.TypeReference} {
		v, err := wbem.NewVariant(tag, nil)
		require.NoError(t, err)

		got, err := convertScalar(tag, v)
		require.NoError(t, err)
		assert.Equal(t, cim.String(""), got, "absent handle must decode to empty string, not fail")
	}
}

func TestConvertScalarNoPromotion(t *testing.T) {
	// An 8-bit signed payload is read as 8 bits, never widened.
	v, err := wbem.NewVariant(cim.TypeSInt8, int8(-1))
	require.NoError(t, err)

	got, err := convertScalar(cim.TypeSInt8, v)
	require.NoError(t, err)
	assert.Equal(t, cim.SInt8(-1), got)
	_, isWide := got.(cim.SInt32)
	assert.False(t, isWide)
}

func TestConvertScalarUnsupportedTag(t *testing.T) {
	// CIM_OBJECT (13) is a real protocol tag outside the supported set.
	_, err := convertScalar(cim.Type(13), &wbem.Variant{})
	require.Error(t, err)
	assert.True(t, cim.IsUnsupportedTag(err))

	// A tag that still carries the array flag never hits the scalar table.
	_, err = convertScalar(cim.TypeUInt32|cim.FlagArray, &wbem.Variant{})
	assert.True(t, cim.IsUnsupportedTag(err))
}

func TestConvertVariantClassifiesOnArrayFlag(t *testing.T) {
	scalar, err := wbem.NewVariant(cim.TypeUInt32, uint32(4))
	require.NoError(t, err)
	got, err := convertVariant(scalar, cim.TypeUInt32)
	require.NoError(t, err)
	assert.Equal(t, cim.UInt32(4), got)

	arr, err := wbem.NewVariant(cim.TypeUInt32|cim.FlagArray, []uint32{4})
	require.NoError(t, err)
	got, err = convertVariant(arr, cim.TypeUInt32|cim.FlagArray)
	require.NoError(t, err)
	assert.Equal(t, cim.UInt32Array{4}, got)
}
