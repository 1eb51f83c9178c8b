// Package domain models the theater weather grid and everything derived
// from it.
//
// # Grid
//
// A [Frame] covers the theater with 59×59 cells indexed [y][x], y growing
// southward. Each cell carries a weather type, sea-level pressure (hPa),
// surface temperature (°C), wind at ten altitude levels, cloud base, cover,
// size and type, a shower flag, visibility (km) and fog top (ft). Frames
// with version 0 hold no weather; every query treats them as unavailable.
//
// # Resampling
//
// Source fields arrive north-up on their own Ni×Nj grid. [Resample] picks
// the nearest source point for each cell:
//
//	gy = (58 − y) · Nj / 59
//	gx = x · Ni / 59
//	i  = gy · Ni + gx
//
// converts it with a [Transcode] (Pa → hPa, K → °C, m/s → kt, …) and then
// [Smooth]s odd rows and columns toward their neighbours.
//
// # Derived fields
//
// Wind vectors come from paired u/v components at the same level. Cloud
// cover is the running maximum over the contributing layers, and heavy
// layers shrink cloud size until the cloud turns cumulonimbus. Cloud base
// and fog top are barometric heights ([AltitudeFromPressure]) of the
// pressure at the cloud bottom surfaces. The weather type combines cover
// and showers:
//
//	cover > 4 with showers  inclement (4)
//	cover > 4               poor (3)
//	cover > 2               fair (2)
//	otherwise               clear (1)
//
// The airmass drift is the mean of the top level winds with the speed cut
// to a quarter.
//
// # Reports
//
// [Metar] renders a METAR-style observation for one cell in metric or
// imperial units. [BuildReports] renders one per configured [Station].
package domain
