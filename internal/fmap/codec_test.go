package fmap

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
)

// sampleFrame fills every field with distinct, float32-representable values.
func sampleFrame() *domain.Frame {
	f := domain.NewFrame()
	f.Version = domain.Version
	f.Fields = domain.FieldShower | domain.FieldVisibility | domain.FieldFog
	f.Airmass = domain.Vector{Direction: 245, Speed: 12.25}
	f.Turbulence = domain.Layer{Top: 33000, Bottom: 29000}
	f.Contrails = [4]uint32{35000, 29000, 26000, 21000}
	for y := range domain.GridY {
		for x := range domain.GridX {
			fx, fy := float64(x), float64(y)
			f.Type[y][x] = int32((x+y)%4 + 1)
			f.Pressure[y][x] = 990 + fx*0.5 + fy*0.25
			f.Temperature[y][x] = -20 + fx - fy*0.5
			f.Cloud.Base[y][x] = 1000 + fx*100
			f.Cloud.Cover[y][x] = int32(x % 14)
			f.Cloud.Size[y][x] = float64(y % 6)
			f.Cloud.Type[y][x] = int32(x % 2)
			f.Shower[y][x] = int32(y % 2)
			f.Visibility[y][x] = 0.5 + fy
			f.Fog[y][x] = fy * 10
			for level := range domain.WindLevels {
				f.Wind[y][x][level] = domain.Vector{
					Direction: float64((x*7 + y*3 + level*11) % 360),
					Speed:     float64(level) * 4.5,
				}
			}
		}
	}
	return f
}

var approx = cmpopts.EquateApprox(1e-5, 0)

func TestRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			want := sampleFrame()
			codec := Codec{Order: order}

			buf := codec.Encode(want)
			require.Len(t, buf, 104441*4)

			got := domain.NewFrame()
			require.NoError(t, codec.Decode(buf, got))

			if diff := cmp.Diff(want, got, approx, cmpopts.IgnoreFields(domain.Frame{}, "Analytics")); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, domain.Extrema{Min: 990, Max: 990 + 29 + 14.5}, got.Analytics.Pressure)
			assert.Equal(t, domain.Extrema{Min: -20 - 29, Max: -20 + 58}, got.Analytics.Temperature)
		})
	}
}

func TestDecodeDetectsOrder(t *testing.T) {
	want := sampleFrame()
	buf := Codec{Order: binary.BigEndian}.Encode(want)

	got := domain.NewFrame()
	require.NoError(t, Codec{}.Decode(buf, got))
	assert.Equal(t, want.Pressure, got.Pressure)
	assert.Equal(t, binary.BigEndian, DetectOrder(buf))
	assert.Equal(t, binary.LittleEndian, DetectOrder(Codec{}.Encode(want)))
}

// downgrade rewrites a version 8 buffer into an older layout.
func downgrade(t *testing.T, v8 []byte, version uint32) []byte {
	t.Helper()
	layout, err := LayoutFor(version)
	require.NoError(t, err)

	buf := make([]byte, layout.Words*wordSize)
	copy(buf, v8[:common.Words*wordSize])
	if layout.Visibility.Present {
		src := 97479 * wordSize
		copy(buf[layout.Visibility.Offset*wordSize:], v8[src:src+cells*wordSize])
	}
	binary.LittleEndian.PutUint32(buf, version)
	return buf
}

func TestDecodeOlderVersions(t *testing.T) {
	src := sampleFrame()
	v8 := Codec{}.Encode(src)

	t.Run("version 5 has visibility only", func(t *testing.T) {
		got := domain.NewFrame()
		require.NoError(t, Codec{}.Decode(downgrade(t, v8, 5), got))

		assert.Equal(t, uint32(5), got.Version)
		assert.Equal(t, domain.FieldVisibility, got.Fields)
		assert.Equal(t, src.Visibility, got.Visibility)
		assert.Equal(t, domain.Integer{}, got.Shower)
		assert.Equal(t, domain.Scalar{}, got.Fog)
		assert.Equal(t, src.Cloud.Type, got.Cloud.Type)
	})

	t.Run("version 1 has no optional fields", func(t *testing.T) {
		got := domain.NewFrame()
		require.NoError(t, Codec{}.Decode(downgrade(t, v8, 1), got))

		assert.Zero(t, got.Fields)
		assert.Equal(t, domain.Scalar{}, got.Visibility)
		assert.Equal(t, src.Pressure, got.Pressure)
	})
}

func TestDecodeErrors(t *testing.T) {
	valid := Codec{}.Encode(sampleFrame())

	t.Run("short header", func(t *testing.T) {
		err := Codec{}.Decode(valid[:40], domain.NewFrame())
		assert.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("short body", func(t *testing.T) {
		err := Codec{}.Decode(valid[:len(valid)-4], domain.NewFrame())
		assert.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("unsupported version", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(buf, 9)
		err := Codec{Order: binary.LittleEndian}.Decode(buf, domain.NewFrame())
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("dimension", func(t *testing.T) {
		buf := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(buf[4:], 64)
		err := Codec{}.Decode(buf, domain.NewFrame())
		assert.ErrorIs(t, err, ErrDimension)
	})

	t.Run("failed decode leaves frame untouched", func(t *testing.T) {
		f := sampleFrame()
		require.Error(t, Codec{}.Decode(valid[:100], f))
		assert.Equal(t, domain.Version, f.Version)
	})
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		version uint32
		words   int
		fields  domain.FieldSet
	}{
		{1, 93998, 0},
		{4, 93998, 0},
		{5, 97479, domain.FieldVisibility},
		{7, 97479, domain.FieldVisibility},
		{8, 104441, domain.FieldShower | domain.FieldVisibility | domain.FieldFog},
	}
	for _, tt := range tests {
		l, err := LayoutFor(tt.version)
		require.NoError(t, err)
		assert.Equal(t, tt.words, l.Words, "version %d", tt.version)
		assert.Equal(t, tt.fields, l.Fields(), "version %d", tt.version)
	}

	v8, err := LayoutFor(8)
	require.NoError(t, err)
	assert.Equal(t, Capability{Present: true, Offset: 97479, Kind: KindFloat}, v8.Visibility)
	assert.Equal(t, Capability{Present: true, Offset: 93998, Kind: KindInt}, v8.Shower)

	_, err = LayoutFor(0)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	size, err := Size(8)
	require.NoError(t, err)
	assert.Equal(t, 417764, size)
}

func TestTimeFromFilename(t *testing.T) {
	tag, err := TimeFromFilename("/srv/weather/261200.fmap")
	require.NoError(t, err)
	assert.Equal(t, domain.TimeTag{Day: 26, Hour: 12}, tag)
	assert.Equal(t, "261200.fmap", Filename(tag))

	_, err = TimeFromFilename("weather.fmap")
	assert.Error(t, err)
}
