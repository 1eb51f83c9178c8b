package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnavailable is returned by point queries against an empty frame.
	ErrUnavailable = errors.New("weather unavailable")
	// ErrOutOfGrid is returned for cell indices outside the theater grid.
	ErrOutOfGrid = errors.New("cell outside theater grid")
)

// Query constants.
const (
	imcVisibilityKm   = 3
	imcCeilingFt      = 4000
	oatLapseAloft     = 1.981 // °C per 1000 ft
	oatLapseStandard  = 1.98  // °C per 1000 ft
	pressureAltPerHPa = 30    // ft per hPa
	densityAltPerDeg  = 120   // ft per °C
	unsignedAloftFt   = 30000
	standardQNH       = 1013
)

// Point is the weather at one cell.
type Point struct {
	X           int                `json:"x"`
	Y           int                `json:"y"`
	Type        int32              `json:"type"`
	Pressure    float64            `json:"pressure"`
	Temperature float64            `json:"temperature"`
	Wind        [WindLevels]Vector `json:"wind"`
	CloudBase   float64            `json:"cloud_base"`
	CloudCover  int32              `json:"cloud_cover"`
	CloudSize   float64            `json:"cloud_size"`
	CloudType   int32              `json:"cloud_type"`
	Shower      bool               `json:"shower"`
	Visibility  float64            `json:"visibility"`
	Fog         float64            `json:"fog"`
	IMC         bool               `json:"imc"`
}

func checkCell(f *Frame, x, y int) error {
	if !f.Available() {
		return ErrUnavailable
	}
	if !InGrid(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfGrid, x, y)
	}
	return nil
}

// PointAt returns every field of cell (x, y).
func PointAt(f *Frame, x, y int) (Point, error) {
	if err := checkCell(f, x, y); err != nil {
		return Point{}, err
	}
	return Point{
		X:           x,
		Y:           y,
		Type:        f.Type[y][x],
		Pressure:    f.Pressure[y][x],
		Temperature: f.Temperature[y][x],
		Wind:        f.Wind[y][x],
		CloudBase:   f.Cloud.Base[y][x],
		CloudCover:  f.Cloud.Cover[y][x],
		CloudSize:   f.Cloud.Size[y][x],
		CloudType:   f.Cloud.Type[y][x],
		Shower:      f.Shower[y][x] == 1,
		Visibility:  f.Visibility[y][x],
		Fog:         f.Fog[y][x],
		IMC:         IsIMC(f, x, y),
	}, nil
}

// TemperatureAt returns the surface temperature (°C) of a cell.
func TemperatureAt(f *Frame, x, y int) (float64, error) {
	if err := checkCell(f, x, y); err != nil {
		return 0, err
	}
	return f.Temperature[y][x], nil
}

// PressureAt returns the sea-level pressure (hPa) of a cell.
func PressureAt(f *Frame, x, y int) (float64, error) {
	if err := checkCell(f, x, y); err != nil {
		return 0, err
	}
	return f.Pressure[y][x], nil
}

// WindAt returns the wind of a cell at a level.
func WindAt(f *Frame, x, y, level int) (Vector, error) {
	if err := checkCell(f, x, y); err != nil {
		return Vector{}, err
	}
	if level < 0 || level >= WindLevels {
		return Vector{}, fmt.Errorf("%w: %d", ErrWindLevel, level)
	}
	return f.Wind[y][x][level], nil
}

// IsIMC reports instrument conditions: visibility at or below 3 km or cloud
// base at or below 4000 ft.
func IsIMC(f *Frame, x, y int) bool {
	if !f.Available() || !InGrid(x, y) {
		return false
	}
	return f.Visibility[y][x] <= imcVisibilityKm || f.Cloud.Base[y][x] <= imcCeilingFt
}

// WindsAloft formats the forecast-style DDSS±TT group for a level. The
// temperature sign is omitted at and above 30000 ft.
func WindsAloft(f *Frame, x, y, level int) (string, error) {
	w, err := WindAt(f, x, y, level)
	if err != nil {
		return "", err
	}
	alt := WindAltitudesFt[level]
	oat := f.Temperature[y][x] - oatLapseAloft*float64(alt)/1000

	s := fmt.Sprintf("%02d%02d", int(math.Round(w.Direction/10)), int(math.Round(w.Speed)))
	if alt < unsignedAloftFt {
		if oat < 0 {
			s += "-"
		} else {
			s += "+"
		}
	}
	return s + fmt.Sprintf("%02d", int(math.Round(math.Abs(oat)))), nil
}

// DensityAltitude returns the density altitude (ft) of a field at
// elevationFt using the cell's temperature and QNH.
func DensityAltitude(f *Frame, x, y int, elevationFt float64) (float64, error) {
	if err := checkCell(f, x, y); err != nil {
		return 0, err
	}
	st := standardTempC - oatLapseStandard*elevationFt/1000
	pa := elevationFt + (standardQNH-f.Pressure[y][x])*pressureAltPerHPa
	return pa + densityAltPerDeg*(f.Temperature[y][x]-st), nil
}

// Doppler returns a synthetic radar return for a cell: positive for rain,
// negative at or below freezing, 0 for none.
func Doppler(f *Frame, x, y int) int {
	if !f.Available() || !InGrid(x, y) {
		return 0
	}
	wx := 0
	if f.Type[y][x] == WeatherInclement || f.Shower[y][x] == 1 {
		wx++
		if f.Pressure[y][x] < 1004 {
			wx++
		}
		if f.Wind[y][x][0].Speed > 20 {
			wx++
		}
		if f.Cloud.Type[y][x] == CloudCumulonimbus && f.Cloud.Size[y][x] < 2 {
			wx += 2
		}
	}
	if f.Temperature[y][x] <= 0 {
		wx = -wx
	}
	return wx
}
