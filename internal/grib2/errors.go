package grib2

import "errors"

var (
	// ErrBitWidth is returned for packing widths outside 0..32.
	ErrBitWidth = errors.New("grib2: bit width out of range")
	// ErrOutOfRange is returned when a packed field lies past the payload end.
	ErrOutOfRange = errors.New("grib2: packed field out of range")
	// ErrScaleRange is returned when a binary or decimal scale factor would
	// overflow float64 arithmetic.
	ErrScaleRange = errors.New("grib2: scale factor out of range")
	// ErrShortPayload is returned when section 7 holds fewer bits than the
	// grid requires.
	ErrShortPayload = errors.New("grib2: data section shorter than grid")

	// ErrBadIndicator marks a message whose section 0 tag is not "GRIB".
	ErrBadIndicator = errors.New("grib2: indicator tag is not GRIB")
	// ErrSectionMissing marks a section whose number octet did not match.
	ErrSectionMissing = errors.New("grib2: section missing")
	// ErrUnsupportedTemplate marks a grid, product or data representation
	// template that is not decoded.
	ErrUnsupportedTemplate = errors.New("grib2: unsupported template")
	// ErrUnsupportedDiscipline marks a message outside the meteorological
	// discipline.
	ErrUnsupportedDiscipline = errors.New("grib2: unsupported discipline")
	// ErrLengthMismatch marks a message whose sections did not end at the
	// length declared in section 0.
	ErrLengthMismatch = errors.New("grib2: message length mismatch")
	// ErrNoProgress stops a scan whose cursor did not advance.
	ErrNoProgress = errors.New("grib2: parse made no progress")
	// ErrNoGrid is returned when a message lacks a decoded lat/lon grid.
	ErrNoGrid = errors.New("grib2: no lat/lon grid definition")
	// ErrPointCount is returned when Ni*Nj disagrees with the declared point
	// counts or is too large to decode.
	ErrPointCount = errors.New("grib2: grid point count mismatch")
)
