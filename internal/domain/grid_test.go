package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	f := NewFrame()

	assert.False(t, f.Available())
	assert.Equal(t, TimeTag{Day: 1}, f.Time)
	assert.Equal(t, Layer{Top: 31000, Bottom: 28000}, f.Turbulence)
	assert.Equal(t, [4]uint32{34000, 28000, 25000, 20000}, f.Contrails)
	assert.Equal(t, NewAnalytics(), f.Analytics)

	x, y := f.Dimension()
	assert.Equal(t, 59, x)
	assert.Equal(t, 59, y)
}

func TestFrameReset(t *testing.T) {
	f := NewFrame()
	f.Version = Version
	f.Pressure[3][4] = 1001
	f.Fields = FieldFog | FieldShower

	f.Reset()

	assert.False(t, f.Available())
	assert.Zero(t, f.Pressure[3][4])
	assert.Zero(t, f.Fields)
}

func TestNilFrameUnavailable(t *testing.T) {
	var f *Frame
	assert.False(t, f.Available())
}

func TestScalarRange(t *testing.T) {
	var s Scalar
	s.Fill(12)
	s[0][58] = -3
	s[40][7] = 31.5

	assert.Equal(t, Extrema{Min: -3, Max: 31.5}, s.Range())
}

func TestExtremaObserve(t *testing.T) {
	a := NewAnalytics()
	for _, v := range []float64{1012, 998.5, 1021} {
		a.Pressure.Observe(v)
	}
	assert.Equal(t, Extrema{Min: 998.5, Max: 1021}, a.Pressure)
	assert.Equal(t, Extrema{Min: 50, Max: -50}, a.Temperature, "untouched extrema keep sentinels")
}

func TestFieldSetHas(t *testing.T) {
	s := FieldShower | FieldFog
	assert.True(t, s.Has(FieldShower))
	assert.True(t, s.Has(FieldShower|FieldFog))
	assert.False(t, s.Has(FieldVisibility))
	assert.False(t, s.Has(FieldVisibility|FieldFog))
}

func TestInGrid(t *testing.T) {
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{58, 58, true},
		{59, 0, false},
		{0, 59, false},
		{-1, 10, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InGrid(tt.x, tt.y), "(%d, %d)", tt.x, tt.y)
	}
}

func TestTimeTag(t *testing.T) {
	t.Run("from time", func(t *testing.T) {
		tag := TimeTagOf(time.Date(2024, 4, 26, 12, 5, 0, 0, time.UTC))
		assert.Equal(t, TimeTag{Day: 26, Hour: 12, Minute: 5}, tag)
		assert.Equal(t, "261205", tag.String())
	})

	t.Run("zero padded", func(t *testing.T) {
		assert.Equal(t, "010000", TimeTag{Day: 1}.String())
	})

	t.Run("parse", func(t *testing.T) {
		tag, err := ParseTimeTag("261200")
		require.NoError(t, err)
		assert.Equal(t, TimeTag{Day: 26, Hour: 12}, tag)

		tag, err = ParseTimeTag("10930")
		require.NoError(t, err)
		assert.Equal(t, TimeTag{Day: 1, Hour: 9, Minute: 30}, tag)
	})

	t.Run("parse errors", func(t *testing.T) {
		for _, s := range []string{"", "1234567", "26x200", "322400", "012460"} {
			_, err := ParseTimeTag(s)
			assert.Error(t, err, s)
		}
	})
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		defer SetClock(nil)

		assert.Equal(t, fixedTime, Now())
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.True(t, time.Since(Now()) < time.Second)
	})
}
