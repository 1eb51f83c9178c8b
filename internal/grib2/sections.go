package grib2

import (
	"math"
	"time"
)

// Section numbers as they appear in octet 5 of each section.
const (
	sectionIdentification = 1
	sectionLocalUse       = 2
	sectionGrid           = 3
	sectionProduct        = 4
	sectionRepresentation = 5
	sectionBitmap         = 6
	sectionData           = 7
)

const (
	indicatorTag    = "GRIB"
	indicatorLength = 16
	endTag          = "7777"
	endLength       = 4
)

// Indicator is section 0.
type Indicator struct {
	Tag        string
	Discipline uint8
	Edition    uint8
	Length     uint64 // total message length in octets
}

// Valid reports whether the indicator carried the GRIB tag.
func (i Indicator) Valid() bool { return i.Tag == indicatorTag }

// Header holds the framing every numbered section shares.
type Header struct {
	Present bool
	Offset  int
	Length  uint32
}

// Identification is section 1.
type Identification struct {
	Header
	Center          uint16
	Subcenter       uint16
	MasterTable     uint8
	LocalTable      uint8
	RefSignificance uint8
	Year            uint16
	Month           uint8
	Day             uint8
	Hour            uint8
	Minute          uint8
	Second          uint8
	Status          uint8
	DataType        uint8
}

// Reference returns the reference time in UTC. The zero time is returned if
// the section was absent.
func (id Identification) Reference() time.Time {
	if !id.Present {
		return time.Time{}
	}
	return time.Date(int(id.Year), time.Month(id.Month), int(id.Day),
		int(id.Hour), int(id.Minute), int(id.Second), 0, time.UTC)
}

// LocalUse is section 2. Its contents are centre-specific and skipped.
type LocalUse struct {
	Header
}

// GridDefinition is section 3.
type GridDefinition struct {
	Header
	Source             uint8
	Points             uint32
	ListOctets         uint8
	ListInterpretation uint8
	Template           uint16
	LatLon             *LatLonGrid // template 3.0 only
}

// LatLonGrid is grid definition template 3.0.
type LatLonGrid struct {
	EarthShape      uint8
	RadiusScale     uint8
	RadiusValue     uint32
	MajorScale      uint8
	MajorValue      uint32
	MinorScale      uint8
	MinorValue      uint32
	Ni              uint32
	Nj              uint32
	BasicAngle      uint32
	Subdivisions    uint32
	La1             int32
	Lo1             int32
	ResolutionFlags uint8
	La2             int32
	Lo2             int32
	Di              uint32
	Dj              uint32
	ScanningMode    uint8
}

// Degrees converts an angle stored in this grid's units to degrees. A basic
// angle of 0 (or missing) means micro-degrees.
func (g LatLonGrid) Degrees(v int32) float64 {
	if g.BasicAngle == 0 || g.BasicAngle == math.MaxUint32 ||
		g.Subdivisions == 0 || g.Subdivisions == math.MaxUint32 {
		return float64(v) * 1e-6
	}
	return float64(v) * float64(g.BasicAngle) / float64(g.Subdivisions)
}

// ProductDefinition is section 4.
type ProductDefinition struct {
	Header
	Coordinates uint16
	Template    uint16
	Product     *Product // templates 4.0 and 4.8
}

// Product holds the fields shared by product templates 4.0 and 4.8.
type Product struct {
	Category          uint8
	Number            uint8
	ProcessType       uint8
	BackgroundProcess uint8
	ForecastProcess   uint8
	CutoffHours       uint16
	CutoffMinutes     uint8
	TimeUnit          uint8
	ForecastTime      uint32
	First             Surface
	Second            Surface
	Interval          *StatisticalInterval // template 4.8 only
}

// Surface is a fixed surface: code table 4.5 type plus a scaled value.
type Surface struct {
	Type   uint8
	Factor uint8 // sign-magnitude; 0xFF means missing
	Scaled uint32
}

// Fixed surface types used by the dispatcher (code table 4.5).
const (
	SurfaceGround              uint8 = 1
	SurfaceIsobaric            uint8 = 100
	SurfaceMeanSea             uint8 = 101
	SurfaceAboveGround         uint8 = 103
	SurfaceLowCloudBottom      uint8 = 212
	SurfaceConvectiveCloudBase uint8 = 242
)

// Value returns the surface value with its scale factor applied.
func (s Surface) Value() float64 {
	if s.Factor == 0 || s.Factor == 0xFF {
		return float64(s.Scaled)
	}
	f := int(s.Factor & 0x7F)
	if s.Factor&0x80 != 0 {
		f = -f
	}
	return float64(s.Scaled) / math.Pow10(f)
}

// StatisticalInterval is the tail of product template 4.8.
type StatisticalInterval struct {
	End     time.Time
	Ranges  uint8
	Missing uint32
}

// DataRepresentation is section 5.
type DataRepresentation struct {
	Header
	Points   uint32
	Template uint16
	Simple   *SimplePacking // template 5.0 only
}

// Bitmap is section 6. The bitmap is carried but never applied to values.
type Bitmap struct {
	Header
	Indicator uint8
	Bits      []byte
}

// Data is section 7.
type Data struct {
	Header
	Payload []byte
}

// End is section 8.
type End struct {
	Present bool
	Offset  int
	Tag     string
}
