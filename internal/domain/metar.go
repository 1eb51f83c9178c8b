package domain

import (
	"fmt"
	"math"
	"strings"
)

// Report thresholds.
const (
	fogOverrideFt     = 300
	fogOverrideVisM   = 300
	fogDenseVisM      = 1000
	mistVisM          = 5000
	maxMetricVisM     = 9999
	unlimitedVisM     = 16093.4
	metersPerMile     = 1609.344
	hPaToInHg         = 0.0295301
	dewpointLapse     = 1.2 // °C per 1000 ft of ceiling
	clearDewpointSpan = 10
)

// Metar returns a METAR-style observation for cell (x, y), or "" when the
// frame holds no weather or the cell is outside the grid.
func Metar(f *Frame, x, y int, units UnitSystem) string {
	if !f.Available() || !InGrid(x, y) {
		return ""
	}

	temp := f.Temperature[y][x]
	pres := f.Pressure[y][x]
	wxType := f.Type[y][x]
	base := f.Cloud.Base[y][x]
	fog := f.Fog[y][x]
	visM := f.Visibility[y][x] * 1000

	fogData := f.Fields.Has(FieldFog)
	hasFog := fogData && fog > 0
	hasVis := f.Fields.Has(FieldVisibility)
	if hasFog && hasVis && fog <= fogOverrideFt && visM > fogDenseVisM {
		visM = fogOverrideVisM
	}

	var b strings.Builder
	b.WriteString(f.Time.String())
	b.WriteString("Z ")

	wind := f.Wind[y][x][0]
	fmt.Fprintf(&b, "%03d%02dKT ", int(math.Round(wind.Direction)), int(math.Round(wind.Speed)))

	b.WriteString(visibilityGroup(visM, hasVis, units))
	b.WriteByte(' ')

	if wxType == WeatherInclement {
		b.WriteString(precipitation(temp, f.Shower[y][x] == 1, f.Cloud.Type[y][x], f.Cloud.Size[y][x]))
	}
	if fogData && hasVis {
		b.WriteString(obscuration(visM, fog, temp, wxType))
	}

	ceiling := base
	if hasFog && fog < base {
		ceiling = fog
	}
	sky := skyCondition(f.Cloud.Cover[y][x], f.Cloud.Type[y][x], ceiling)
	b.WriteString(sky)
	b.WriteByte(' ')

	dew := temp
	switch {
	case sky == "CLR":
		dew = temp - clearDewpointSpan
	case wxType != WeatherInclement:
		dew = temp - ceiling/1000*dewpointLapse
	}
	b.WriteString(metarTemp(temp))
	b.WriteByte('/')
	b.WriteString(metarTemp(dew))
	b.WriteByte(' ')

	b.WriteString(altimeter(pres, units))
	return b.String()
}

func visibilityGroup(visM float64, hasVis bool, units UnitSystem) string {
	if units == Imperial {
		if !hasVis || visM >= unlimitedVisM {
			return "10SM"
		}
		return fmt.Sprintf("%02dSM", int(math.Round(visM/metersPerMile)))
	}
	rounded := int(math.Round(visM/100)) * 100
	if !hasVis || rounded > maxMetricVisM {
		return "9999"
	}
	return fmt.Sprintf("%04d", rounded)
}

func precipitation(temp float64, shower bool, cloudType int32, size float64) string {
	switch {
	case temp > 0 && shower && cloudType == CloudCumulonimbus && size < 1:
		return "TSRA "
	case temp > 0 && shower:
		return "SHRA "
	case temp > 0 && cloudType == CloudCumulonimbus:
		return "+RA "
	case temp > 0:
		return "RA "
	case shower:
		return "SN "
	default:
		return "FZRA "
	}
}

func obscuration(visM, fog, temp float64, wxType int32) string {
	if fog > 0 && fog <= fogOverrideFt && wxType > WeatherClear {
		switch {
		case visM < fogDenseVisM && temp < 0:
			return "FZFG "
		case visM < fogDenseVisM:
			return "FG "
		case visM < mistVisM:
			return "BR "
		}
		return ""
	}
	if visM < mistVisM && wxType < WeatherInclement {
		return "HZ "
	}
	return ""
}

func skyCondition(cover, cloudType int32, ceiling float64) string {
	if ceiling <= 0 || cover <= 0 {
		return "CLR"
	}
	amount := "FEW"
	switch {
	case cover >= 9:
		amount = "OVC"
	case cover >= 5:
		amount = "BKN"
	case cover >= 3:
		amount = "SCT"
	}
	s := fmt.Sprintf("%s%03d", amount, int(math.Round(ceiling/100)))
	if cloudType > CloudCumulus {
		s += "CB"
	}
	return s
}

func metarTemp(t float64) string {
	sign := ""
	if t < 0 {
		sign = "M"
	}
	return fmt.Sprintf("%s%02d", sign, int(math.Round(math.Abs(t))))
}

func altimeter(hPa float64, units UnitSystem) string {
	if units == Imperial {
		return fmt.Sprintf("A%04d", int(math.Round(hPa*hPaToInHg*100)))
	}
	return fmt.Sprintf("Q%04d", int(math.Round(hPa)))
}
