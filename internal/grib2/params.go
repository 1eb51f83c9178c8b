package grib2

import "strconv"

// DisciplineMeteorological is the section 0 discipline the parameter
// identities below belong to.
const DisciplineMeteorological uint8 = 0

// Param identifies a discipline-0 quantity as category*256 + number.
type Param int

// Parameters recognised by the theater decoder.
const (
	ParamTMP   Param = 0    // temperature, K
	ParamPRATE Param = 263  // precipitation rate, kg m-2 s-1
	ParamAPCP  Param = 264  // total precipitation
	ParamACPCP Param = 266  // convective precipitation
	ParamUGRD  Param = 514  // u wind component, m/s
	ParamVGRD  Param = 515  // v wind component, m/s
	ParamPRES  Param = 768  // pressure, Pa
	ParamPRMSL Param = 769  // pressure reduced to MSL, Pa
	ParamTCDC  Param = 1537 // total cloud cover, %
	ParamVIS   Param = 4864 // visibility, m

	ParamUnknown Param = -1
)

// ParamOf combines a product category and number.
func ParamOf(category, number uint8) Param {
	return Param(int(category)*256 + int(number))
}

var paramNames = map[Param]string{
	ParamTMP:   "TMP",
	ParamPRATE: "PRATE",
	ParamAPCP:  "APCP",
	ParamACPCP: "ACPCP",
	ParamUGRD:  "UGRD",
	ParamVGRD:  "VGRD",
	ParamPRES:  "PRES",
	ParamPRMSL: "PRMSL",
	ParamTCDC:  "TCDC",
	ParamVIS:   "VIS",
}

func (p Param) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	if p == ParamUnknown {
		return "UNKNOWN"
	}
	return "param(" + strconv.Itoa(int(p)) + ")"
}

// Known reports whether p is one of the recognised parameters.
func (p Param) Known() bool {
	_, ok := paramNames[p]
	return ok
}
