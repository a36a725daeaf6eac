package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

func everyKind(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	headers := []string{"s", "isize", "usize", "i128", "u128", "i64", "u64", "i32", "u32", "i16", "u16", "i8", "u8", "f64", "f32"}
	rows := [][]val.Value{
		{
			val.FromString("Lionel Messi"), val.FromIsize(-7), val.FromUsize(888),
			val.FromInt128(val.NewInt128(-1, 0)), val.FromUint128(val.NewUint128(1, 2)),
			val.FromInt64(math.MinInt64), val.FromUint64(math.MaxUint64),
			val.FromInt32(-32), val.FromUint32(32), val.FromInt16(-16), val.FromUint16(16),
			val.FromInt8(-8), val.FromUint8(255), val.FromFloat64(66.66), val.FromFloat32(2.5),
		},
		{
			val.FromString(""), val.FromIsize(0), val.FromUsize(0),
			val.FromInt128(val.NewInt128(0, 42)), val.FromUint128(val.NewUint128(0, 0)),
			val.FromInt64(0), val.FromUint64(0),
			val.FromInt32(math.MaxInt32), val.FromUint32(0), val.FromInt16(0), val.FromUint16(0),
			val.FromInt8(math.MinInt8), val.FromUint8(0), val.FromFloat64(math.NaN()), val.FromFloat32(-0.5),
		},
	}
	var values []val.Value
	for _, r := range rows {
		values = append(values, r...)
	}
	df, err := dataframe.New(headers, values, len(headers), len(rows))
	require.NoError(t, err)
	df.SetDisplayMode(val.DisplayQuoted)
	return df
}

func assertSameFrame(t *testing.T, want, got *dataframe.DataFrame) {
	t.Helper()
	require.Equal(t, want.Headers(), got.Headers())
	require.Equal(t, want.Height(), got.Height())
	assert.Equal(t, want.DisplayMode(), got.DisplayMode())
	for r := 0; r < want.Height(); r++ {
		w, _ := want.RowValues(r)
		g, _ := got.RowValues(r)
		for i := range w {
			assert.Equal(t, w[i].Kind(), g[i].Kind(), "row %d column %s", r, want.Headers()[i])
			assert.True(t, w[i].Equal(g[i]), "row %d column %s: %v != %v", r, want.Headers()[i], w[i], g[i])
		}
	}
}

func TestFrameCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		codec *FrameCodec
	}{
		{name: "plain", codec: NewFrameCodec()},
		{name: "compressed", codec: NewFrameCodec(WithCompression())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := everyKind(t)

			data, err := tt.codec.Encode(df)
			require.NoError(t, err)
			require.NoError(t, Validate(data))

			h, err := ReadHeader(data)
			require.NoError(t, err)
			assert.Equal(t, uint32(15), h.Width)
			assert.Equal(t, uint32(2), h.Height)
			assert.Equal(t, len(data), h.Size())
			assert.Equal(t, tt.codec.compress, h.Compressed())

			got, err := NewFrameCodec().Decode(data)
			require.NoError(t, err)
			assertSameFrame(t, df, got)
		})
	}
}

func TestFrameCodec_CSVFrame(t *testing.T) {
	df, err := dataframe.ReadString("name,xg,goals\nLionel Messi,66.66,66\nC. Ronaldo,-0.69,3\n")
	require.NoError(t, err)

	c := NewFrameCodec(WithCompression())
	data, err := c.Encode(df)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	assertSameFrame(t, df, got)
	assert.Equal(t, df.String(), got.String())
}

func TestFrameCodec_EmptyFrame(t *testing.T) {
	df, err := dataframe.ReadString("")
	require.NoError(t, err)

	data, err := NewFrameCodec().Encode(df)
	require.NoError(t, err)
	assert.Len(t, data, HeaderSize)

	got, err := NewFrameCodec().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Width())
	assert.Equal(t, 0, got.Height())
}

func TestFrameCodec_Corruption(t *testing.T) {
	c := NewFrameCodec()
	data, err := c.Encode(everyKind(t))
	require.NoError(t, err)

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[HeaderSize+3] ^= 0xFF
		_, err := c.Decode(bad)
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("flipped header byte", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[7] ^= 0x01
		assert.ErrorIs(t, Validate(bad), ErrChecksum)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := c.Decode(data[:len(data)-1])
		assert.ErrorIs(t, err, ErrShortFrame)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := ReadHeader([]byte{0x01, 0x02, 0x03})
		assert.ErrorIs(t, err, ErrShortFrame)
	})
}

func TestFrameCodec_CorruptPayload(t *testing.T) {
	// A well-formed checksum over a payload that does not decode.
	df, err := dataframe.New([]string{"a"}, []val.Value{val.FromString("x")}, 1, 1)
	require.NoError(t, err)
	data, err := NewFrameCodec().Encode(df)
	require.NoError(t, err)

	bad := append([]byte(nil), data...)
	bad[HeaderSize+2] = 0xEE // kind tag of the only cell
	reseal(bad)

	_, err = NewFrameCodec().Decode(bad)
	assert.ErrorIs(t, err, ErrCorrupt)
}
