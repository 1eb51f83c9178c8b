package domain

import (
	"errors"
	"fmt"
)

// ErrGridMismatch is returned when a value slice does not cover its source grid.
var ErrGridMismatch = errors.New("source values do not cover grid")

// SourceGrid is the resolution of an incoming field, Ni columns by Nj rows,
// stored north-up.
type SourceGrid struct {
	Ni, Nj int
}

// Points returns Ni*Nj.
func (g SourceGrid) Points() int { return g.Ni * g.Nj }

// Index returns the nearest-neighbour source index for theater cell (x, y).
// Rows are inverted because the source is north-up and the theater grid is
// top-down. The result is always in [0, Ni*Nj).
func (g SourceGrid) Index(x, y int) int {
	gy := (GridY - 1 - y) * g.Nj / GridY
	gx := x * g.Ni / GridX
	return gy*g.Ni + gx
}

func (g SourceGrid) check(values []float64) error {
	if g.Ni <= 0 || g.Nj <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrGridMismatch, g.Ni, g.Nj)
	}
	if len(values) < g.Points() {
		return fmt.Errorf("%w: %d values for %dx%d", ErrGridMismatch, len(values), g.Ni, g.Nj)
	}
	return nil
}

// Transcode converts a raw source value: raw*Scale + Offset.
type Transcode struct {
	Scale  float64
	Offset float64
}

// Apply converts v.
func (t Transcode) Apply(v float64) float64 { return v*t.Scale + t.Offset }

// Per-parameter unit conversions.
var (
	TranscodePRMSL = Transcode{Scale: 0.01}               // Pa -> hPa
	TranscodeVIS   = Transcode{Scale: 0.001}              // m -> km
	TranscodeTMP   = Transcode{Scale: 1, Offset: -273.15} // K -> °C
	TranscodeTCDC  = Transcode{Scale: 0.125}              // % -> coverage code
	TranscodeWind  = Transcode{Scale: 1.944}              // m/s -> kt
	TranscodePRES  = Transcode{Scale: 0.01}               // Pa -> hPa
	TranscodePRATE = Transcode{Scale: 3600}               // kg m-2 s-1 -> mm/h
)

// Resample writes values onto dst by nearest neighbour, converting each with
// tc, then smooths the result. When track is non-nil every assigned value is
// folded into it before smoothing.
func Resample(dst *Scalar, src SourceGrid, values []float64, tc Transcode, track *Extrema) error {
	if err := src.check(values); err != nil {
		return err
	}
	for y := range GridY {
		for x := range GridX {
			v := tc.Apply(values[src.Index(x, y)])
			dst[y][x] = v
			if track != nil {
				track.Observe(v)
			}
		}
	}
	Smooth(dst)
	return nil
}

// Smooth replaces odd columns with the mean of their horizontal neighbours,
// then odd rows with the mean of their vertical neighbours. The last row and
// column are left as sampled.
func Smooth(s *Scalar) {
	for y := 0; y < GridY-1; y++ {
		for x := 0; x < GridX-1; x++ {
			if x > 0 && x%2 == 1 {
				s[y][x] = (s[y][x-1] + s[y][x+1]) / 2
			}
			if y > 0 && y%2 == 1 {
				s[y][x] = (s[y-1][x] + s[y+1][x]) / 2
			}
		}
	}
}

// eachCell calls fn with every theater cell and its source index.
func (g SourceGrid) eachCell(fn func(x, y, i int)) {
	for y := range GridY {
		for x := range GridX {
			fn(x, y, g.Index(x, y))
		}
	}
}
