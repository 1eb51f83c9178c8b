package grib2

import (
	"fmt"
	"time"
)

// Message is one decoded GRIB2 message. A fresh Message is built for every
// call to Parser.Next, so nothing carries over between messages.
type Message struct {
	Index  int // ordinal within the buffer
	Offset int // absolute offset of section 0

	Indicator      Indicator
	Identification Identification
	LocalUse       LocalUse
	Grid           GridDefinition
	Product        ProductDefinition
	Representation DataRepresentation
	Bitmap         Bitmap
	Data           Data
	End            End

	// Diagnostics collects every non-fatal problem found while parsing.
	Diagnostics []error
}

func (m *Message) diagnose(err error) {
	m.Diagnostics = append(m.Diagnostics, err)
}

// Valid reports whether the message started with a GRIB indicator.
func (m *Message) Valid() bool { return m.Indicator.Valid() }

// Param returns the parameter identity, or ParamUnknown when the product
// template was not decoded.
func (m *Message) Param() Param {
	p := m.Product.Product
	if p == nil {
		return ParamUnknown
	}
	return ParamOf(p.Category, p.Number)
}

// Surface returns the first fixed surface of the product.
func (m *Message) Surface() (Surface, bool) {
	if m.Product.Product == nil {
		return Surface{}, false
	}
	return m.Product.Product.First, true
}

// MaxPoints bounds the grid size of a single message.
const MaxPoints = 1 << 24

// Dimensions returns the source grid size Ni x Nj. Ni*Nj must equal the
// point counts declared in sections 3 and 5 and stay within MaxPoints.
func (m *Message) Dimensions() (ni, nj int, err error) {
	g := m.Grid.LatLon
	if g == nil {
		return 0, 0, ErrNoGrid
	}
	if g.Ni == 0 || g.Nj == 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrNoGrid, g.Ni, g.Nj)
	}
	n := uint64(g.Ni) * uint64(g.Nj)
	switch {
	case n > MaxPoints:
		return 0, 0, fmt.Errorf("%w: %dx%d exceeds %d points", ErrPointCount, g.Ni, g.Nj, MaxPoints)
	case n != uint64(m.Grid.Points):
		return 0, 0, fmt.Errorf("%w: %dx%d, grid declares %d", ErrPointCount, g.Ni, g.Nj, m.Grid.Points)
	case n != uint64(m.Representation.Points):
		return 0, 0, fmt.Errorf("%w: %dx%d, data representation declares %d", ErrPointCount, g.Ni, g.Nj, m.Representation.Points)
	}
	return int(g.Ni), int(g.Nj), nil
}

// Values decodes every grid point of the message.
func (m *Message) Values() ([]float64, error) {
	sp := m.Representation.Simple
	if sp == nil {
		return nil, fmt.Errorf("%w: data representation 5.%d", ErrUnsupportedTemplate, m.Representation.Template)
	}
	ni, nj, err := m.Dimensions()
	if err != nil {
		return nil, err
	}
	return sp.DecodeAll(m.Data.Payload, ni*nj)
}

// Code table 4.4 indicator of unit of time range.
const (
	TimeUnitMinute  uint8 = 0
	TimeUnitHour    uint8 = 1
	TimeUnitDay     uint8 = 2
	TimeUnit3Hours  uint8 = 10
	TimeUnit6Hours  uint8 = 11
	TimeUnit12Hours uint8 = 12
	TimeUnitSecond  uint8 = 13
)

// ForecastOffset converts the product forecast time to a duration.
func (m *Message) ForecastOffset() (time.Duration, bool) {
	p := m.Product.Product
	if p == nil {
		return 0, false
	}
	var unit time.Duration
	switch p.TimeUnit {
	case TimeUnitMinute:
		unit = time.Minute
	case TimeUnitHour:
		unit = time.Hour
	case TimeUnitDay:
		unit = 24 * time.Hour
	case TimeUnit3Hours:
		unit = 3 * time.Hour
	case TimeUnit6Hours:
		unit = 6 * time.Hour
	case TimeUnit12Hours:
		unit = 12 * time.Hour
	case TimeUnitSecond:
		unit = time.Second
	default:
		return 0, false
	}
	return time.Duration(p.ForecastTime) * unit, true
}

// ValidTime returns the reference time plus the forecast offset.
func (m *Message) ValidTime() (time.Time, bool) {
	ref := m.Identification.Reference()
	if ref.IsZero() {
		return time.Time{}, false
	}
	off, ok := m.ForecastOffset()
	if !ok {
		return ref, false
	}
	return ref.Add(off), true
}
