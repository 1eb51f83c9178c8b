package domain

import (
	"fmt"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Theater grid dimensions.
const (
	GridX      = 59
	GridY      = 59
	Cells      = GridX * GridY
	WindLevels = 10
)

// Version is the newest snapshot layout. Frames built from GRIB2 carry it.
const Version uint32 = 8

// Weather types, clear through inclement.
const (
	WeatherClear     int32 = 1
	WeatherFair      int32 = 2
	WeatherPoor      int32 = 3
	WeatherInclement int32 = 4
)

// Cloud types.
const (
	CloudCumulus      int32 = 0
	CloudCumulonimbus int32 = 1
)

// Scalar is a per-cell float field indexed [y][x].
type Scalar [GridY][GridX]float64

// Integer is a per-cell integer field indexed [y][x].
type Integer [GridY][GridX]int32

// WindField holds a vector per cell per altitude level.
type WindField [GridY][GridX][WindLevels]Vector

// Fill sets every cell of s to v.
func (s *Scalar) Fill(v float64) {
	for y := range s {
		for x := range s[y] {
			s[y][x] = v
		}
	}
}

// Range returns the smallest and largest cell of s.
func (s *Scalar) Range() Extrema {
	e := Extrema{Min: floats.Min(s[0][:]), Max: floats.Max(s[0][:])}
	for y := 1; y < GridY; y++ {
		e.Observe(floats.Min(s[y][:]))
		e.Observe(floats.Max(s[y][:]))
	}
	return e
}

// Fill sets every cell of n to v.
func (n *Integer) Fill(v int32) {
	for y := range n {
		for x := range n[y] {
			n[y][x] = v
		}
	}
}

// Vector is a wind direction (degrees) and speed (knots).
type Vector struct {
	Direction float64 `json:"direction"`
	Speed     float64 `json:"speed"`
}

// Cloud groups the per-cell cloud fields.
type Cloud struct {
	Base  Scalar  // ft
	Cover Integer // coverage code
	Size  Scalar  // 0 largest .. 5 smallest
	Type  Integer // CloudCumulus or CloudCumulonimbus
}

// Layer is a vertical band in feet.
type Layer struct {
	Top    uint32 `json:"top"`
	Bottom uint32 `json:"bottom"`
}

// FieldSet records which optional fields hold data.
type FieldSet uint8

const (
	FieldShower FieldSet = 1 << iota
	FieldVisibility
	FieldFog
)

// Has reports whether every field in want is present.
func (s FieldSet) Has(want FieldSet) bool { return s&want == want }

// Extrema is a running minimum and maximum.
type Extrema struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Observe folds v into the extrema.
func (e *Extrema) Observe(v float64) {
	if v < e.Min {
		e.Min = v
	}
	if v > e.Max {
		e.Max = v
	}
}

// Analytics holds the pressure and temperature ranges used for contouring.
type Analytics struct {
	Pressure    Extrema `json:"pressure"`
	Temperature Extrema `json:"temperature"`
}

// NewAnalytics returns analytics seeded with inverted sentinels so the first
// observation always replaces them.
func NewAnalytics() Analytics {
	return Analytics{
		Pressure:    Extrema{Min: 1060, Max: 950},
		Temperature: Extrema{Min: 50, Max: -50},
	}
}

// TimeTag is the day-of-month, hour and minute a frame is valid for.
type TimeTag struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// TimeTagOf returns the tag for t in UTC.
func TimeTagOf(t time.Time) TimeTag {
	t = t.UTC()
	return TimeTag{Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
}

// String formats the tag as DDHHMM.
func (t TimeTag) String() string {
	return fmt.Sprintf("%02d%02d%02d", t.Day, t.Hour, t.Minute)
}

// ParseTimeTag parses a DDHHMM tag. Shorter tags are left-padded with zeros.
func ParseTimeTag(s string) (TimeTag, error) {
	if len(s) == 0 || len(s) > 6 {
		return TimeTag{}, fmt.Errorf("parse time tag %q: want up to 6 digits", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return TimeTag{}, fmt.Errorf("parse time tag %q: not numeric", s)
	}
	tag := TimeTag{Day: n / 10000, Hour: n / 100 % 100, Minute: n % 100}
	if tag.Day > 31 || tag.Hour > 23 || tag.Minute > 59 {
		return TimeTag{}, fmt.Errorf("parse time tag %q: out of range", s)
	}
	return tag, nil
}

// Frame is the theater weather grid. A frame is written only by a decode
// pass and must not be read until that pass returns.
type Frame struct {
	Version    uint32
	Time       TimeTag
	Airmass    Vector
	Turbulence Layer
	Contrails  [4]uint32
	Fields     FieldSet

	Type        Integer
	Pressure    Scalar // hPa
	Temperature Scalar // °C
	Wind        WindField
	Cloud       Cloud
	Shower      Integer
	Visibility  Scalar // km
	Fog         Scalar // ft

	Analytics Analytics
}

// NewFrame returns an empty frame (version 0).
func NewFrame() *Frame {
	f := &Frame{}
	f.Reset()
	return f
}

// Reset clears every field and restores header defaults.
func (f *Frame) Reset() {
	*f = Frame{
		Time:       TimeTag{Day: 1},
		Turbulence: Layer{Top: 31000, Bottom: 28000},
		Contrails:  [4]uint32{34000, 28000, 25000, 20000},
		Analytics:  NewAnalytics(),
	}
}

// Available reports whether the frame holds weather.
func (f *Frame) Available() bool { return f != nil && f.Version > 0 }

// Dimension returns the grid size.
func (f *Frame) Dimension() (x, y int) { return GridX, GridY }

// InGrid reports whether (x, y) addresses a cell.
func InGrid(x, y int) bool {
	return x >= 0 && x < GridX && y >= 0 && y < GridY
}
