package domain

import "math"

// Barometric constants.
const (
	gasConstant   = 8.31432   // N·m/(mol·K)
	molarMass     = 0.0289644 // kg/mol
	gravity       = 9.80665   // m/s²
	metersToFeet  = 3.28084
	standardTempC = 15.0
	kelvin        = 273.15
)

// Standard atmosphere from 0 to 20000 ft in 1000 ft steps.
var (
	standardPressureHPa = [...]float64{
		1013, 977, 942, 908, 875, 843, 812, 782, 753, 724, 697,
		670, 644, 619, 595, 572, 549, 527, 506, 485, 466,
	}
	standardTemperatureC = [...]float64{
		15.0, 13.0, 11.0, 9.1, 7.1, 5.1, 3.1, 1.1, -0.8, -2.8, -4.8,
		-6.8, -8.8, -10.8, -12.7, -14.7, -16.7, -18.7, -20.7, -22.6, -24.6,
	}
)

// StandardTemperature returns the standard-atmosphere temperature (°C) for
// a pressure in hPa: the first table level whose pressure does not exceed
// hPa, or -26 °C above the table.
func StandardTemperature(hPa float64) float64 {
	for i, p := range standardPressureHPa {
		if hPa >= p {
			return standardTemperatureC[i]
		}
	}
	return -26.0
}

// AltitudeFromPressure returns the height in feet at which pressure pres is
// found above a sea-level pressure prmsl, both in Pa. The column temperature
// is the standard temperature at pres shifted by the surface deviation from
// standard.
//
//	h = ln(P/P0) · R · T / (−g · M)
func AltitudeFromPressure(prmsl, pres, surfaceTempC float64) float64 {
	t := StandardTemperature(pres/100) + kelvin
	t += standardTempC - surfaceTempC
	h := math.Log(pres/prmsl) * gasConstant * t / (-gravity * molarMass)
	return h * metersToFeet
}
