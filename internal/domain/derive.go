package domain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Thresholds for the derived fields.
const (
	showerRateMMH     = 1.9
	cloudMinLevelPa   = 20000
	cloudShrinkCover  = 6
	airmassLevel      = 9
	airmassSpeedShare = 0.25
)

// windLevelsPa maps source pressure levels (Pa, or 10 for 10 m above ground)
// to wind level indices.
var windLevelsPa = [WindLevels]float64{10, 92500, 85000, 70000, 65000, 50000, 40000, 30000, 20000, 10000}

// WindAltitudesFt are the nominal altitudes of the wind levels.
var WindAltitudesFt = [WindLevels]int{0, 3000, 6000, 9000, 12000, 18000, 24000, 30000, 40000, 50000}

// ErrWindLevel is returned for a pressure level that has no wind slot.
var ErrWindLevel = errors.New("no wind level for surface value")

// WindLevel returns the level index for a source surface value.
func WindLevel(surface float64) (int, bool) {
	for i, p := range windLevelsPa {
		if surface == p {
			return i, true
		}
	}
	return 0, false
}

// WindVector converts u and v components to a direction and speed.
func WindVector(u, v float64) Vector {
	return Vector{
		Direction: math.Atan2(u, v)*180/math.Pi + 180,
		Speed:     math.Hypot(u, v),
	}
}

// ApplyWind combines u and v components (m/s) from one vertical level into
// the wind field at that level.
func ApplyWind(f *Frame, src SourceGrid, u, v []float64, level int) error {
	if level < 0 || level >= WindLevels {
		return ErrWindLevel
	}
	if err := src.check(u); err != nil {
		return err
	}
	if err := src.check(v); err != nil {
		return err
	}
	src.eachCell(func(x, y, i int) {
		f.Wind[y][x][level] = WindVector(u[i]*TranscodeWind.Scale, v[i]*TranscodeWind.Scale)
	})
	return nil
}

// CloudLayerCounts reports whether a TCDC surface value contributes to cover.
func CloudLayerCounts(surface float64) bool { return surface >= cloudMinLevelPa }

// ApplyCloudCover folds one total-cloud-cover layer (percent) into the cloud
// fields. Cover keeps the running maximum; heavy layers shrink the cloud
// size down to 1, at which point the cloud becomes cumulonimbus.
func ApplyCloudCover(f *Frame, src SourceGrid, tcdc []float64) error {
	if err := src.check(tcdc); err != nil {
		return err
	}
	src.eachCell(func(x, y, i int) {
		coverage := int32(math.Round(TranscodeTCDC.Apply(tcdc[i])))
		if coverage >= f.Cloud.Cover[y][x] {
			f.Cloud.Cover[y][x] = coverage
		}
		if coverage > cloudShrinkCover && f.Cloud.Size[y][x] > 1 {
			f.Cloud.Size[y][x]--
		}
		if f.Cloud.Size[y][x] == 1 {
			f.Cloud.Type[y][x] = CloudCumulonimbus
		}
	})
	return nil
}

// ApplyShowers sets the shower flag wherever the precipitation rate reaches
// the shower threshold.
func ApplyShowers(f *Frame, src SourceGrid, prate []float64) error {
	if err := src.check(prate); err != nil {
		return err
	}
	src.eachCell(func(x, y, i int) {
		if TranscodePRATE.Apply(prate[i]) >= showerRateMMH {
			f.Shower[y][x] = 1
		}
	})
	f.Fields |= FieldShower
	return nil
}

// ApplyCloudBase derives the convective cloud base (ft) from the pressure
// (Pa) at the cloud bottom. Pressure and temperature must already be set.
func ApplyCloudBase(f *Frame, src SourceGrid, pres []float64) error {
	return applyAltitude(&f.Cloud.Base, f, src, pres)
}

// ApplyFog derives the fog top (ft) from the pressure (Pa) at the low cloud
// bottom.
func ApplyFog(f *Frame, src SourceGrid, pres []float64) error {
	if err := applyAltitude(&f.Fog, f, src, pres); err != nil {
		return err
	}
	f.Fields |= FieldFog
	return nil
}

func applyAltitude(dst *Scalar, f *Frame, src SourceGrid, pres []float64) error {
	if err := src.check(pres); err != nil {
		return err
	}
	src.eachCell(func(x, y, i int) {
		prmsl := f.Pressure[y][x] * 100
		if prmsl <= 0 || pres[i] <= 0 {
			return
		}
		dst[y][x] = AltitudeFromPressure(prmsl, pres[i], f.Temperature[y][x])
	})
	return nil
}

// WeatherType classifies a cell from its cloud cover and shower flag.
func WeatherType(cover int32, shower bool) int32 {
	switch {
	case cover > 4 && shower:
		return WeatherInclement
	case cover > 4:
		return WeatherPoor
	case cover > 2:
		return WeatherFair
	default:
		return WeatherClear
	}
}

// ClassifyWeather sets the weather type of every cell.
func ClassifyWeather(f *Frame) {
	for y := range GridY {
		for x := range GridX {
			f.Type[y][x] = WeatherType(f.Cloud.Cover[y][x], f.Shower[y][x] == 1)
		}
	}
}

// ComputeAirmass sets the theater drift to the mean upper-level wind, with
// the speed cut to a quarter.
func ComputeAirmass(f *Frame) {
	dirs := make([]float64, 0, Cells)
	spds := make([]float64, 0, Cells)
	for y := range GridY {
		for x := range GridX {
			w := f.Wind[y][x][airmassLevel]
			dirs = append(dirs, w.Direction)
			spds = append(spds, w.Speed)
		}
	}
	f.Airmass = Vector{
		Direction: math.Trunc(stat.Mean(dirs, nil)),
		Speed:     stat.Mean(spds, nil) * airmassSpeedShare,
	}
}
