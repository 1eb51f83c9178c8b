package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2"
)

// Surface values the dispatcher filters on.
const (
	surfaceMeanSea      = 0
	surfaceTwoMetre     = 2
	initialCloudSize    = 5
	unknownParamsLogged = 8
)

// PassStats summarizes one GRIB2 decode pass.
type PassStats struct {
	Messages    int
	Decoded     int
	Diagnostics int
	Params      map[grib2.Param]int
	Kinds       map[string]int
}

type component struct {
	src    domain.SourceGrid
	values []float64
}

type windPair struct {
	u, v *component
}

// gribPass holds the state of one decode pass.
type gribPass struct {
	frame  *domain.Frame
	logger *slog.Logger
	stats  PassStats

	winds   map[float64]*windPair
	base    []component
	fog     []component
	unknown int
	timeSet bool
}

// DecodeGRIB2 builds a frame from every message in buf. Problems with single
// messages are logged and counted; the pass fails only when no field could be
// decoded.
func DecodeGRIB2(buf []byte, logger *slog.Logger) (*domain.Frame, PassStats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &gribPass{
		frame:  domain.NewFrame(),
		logger: logger,
		stats:  PassStats{Params: map[grib2.Param]int{}, Kinds: map[string]int{}},
		winds:  map[float64]*windPair{},
	}
	f := p.frame
	f.Version = domain.Version
	f.Cloud.Size.Fill(initialCloudSize)

	grib2.NewParser(buf, logger).Scan(p.message)
	p.finish()

	if p.stats.Decoded == 0 {
		return nil, p.stats, ErrNoData
	}
	return f, p.stats, nil
}

func (p *gribPass) message(m *grib2.Message) {
	p.stats.Messages++
	for _, err := range m.Diagnostics {
		p.stats.Diagnostics++
		p.stats.Kinds[DiagnosticKind(err)]++
	}
	if !m.Valid() {
		return
	}

	param := m.Param()
	if d := m.Indicator.Discipline; d != grib2.DisciplineMeteorological {
		p.skip(m, param, fmt.Errorf("%w: %d", grib2.ErrUnsupportedDiscipline, d))
		return
	}
	surface, ok := m.Surface()
	if !ok || !param.Known() {
		p.skipUnknown(m, param)
		return
	}
	ni, nj, err := m.Dimensions()
	if err != nil {
		p.skip(m, param, err)
		return
	}
	values, err := m.Values()
	if err != nil {
		p.skip(m, param, err)
		return
	}
	if !p.timeSet {
		if t, ok := m.ValidTime(); ok {
			p.frame.Time = domain.TimeTagOf(t)
			p.timeSet = true
		}
	}

	src := domain.SourceGrid{Ni: ni, Nj: nj}
	used, err := p.dispatch(param, surface, component{src: src, values: values})
	if err != nil {
		p.skip(m, param, err)
		return
	}
	if used {
		p.stats.Decoded++
		p.stats.Params[param]++
	}
}

// dispatch routes one decoded field. It reports whether the field
// contributed to the frame.
func (p *gribPass) dispatch(param grib2.Param, surface grib2.Surface, c component) (bool, error) {
	f := p.frame
	level := surface.Value()

	switch param {
	case grib2.ParamPRMSL:
		if level != surfaceMeanSea {
			return false, nil
		}
		return true, domain.Resample(&f.Pressure, c.src, c.values, domain.TranscodePRMSL, &f.Analytics.Pressure)
	case grib2.ParamTMP:
		if level != surfaceTwoMetre {
			return false, nil
		}
		return true, domain.Resample(&f.Temperature, c.src, c.values, domain.TranscodeTMP, &f.Analytics.Temperature)
	case grib2.ParamVIS:
		if level != surfaceMeanSea {
			return false, nil
		}
		if err := domain.Resample(&f.Visibility, c.src, c.values, domain.TranscodeVIS, nil); err != nil {
			return false, err
		}
		f.Fields |= domain.FieldVisibility
		return true, nil
	case grib2.ParamTCDC:
		if !domain.CloudLayerCounts(level) {
			return false, nil
		}
		return true, domain.ApplyCloudCover(f, c.src, c.values)
	case grib2.ParamPRATE:
		return true, domain.ApplyShowers(f, c.src, c.values)
	case grib2.ParamUGRD, grib2.ParamVGRD:
		return p.wind(param, level, c)
	case grib2.ParamPRES:
		switch surface.Type {
		case grib2.SurfaceConvectiveCloudBase:
			p.base = append(p.base, c)
			return true, nil
		case grib2.SurfaceLowCloudBottom:
			p.fog = append(p.fog, c)
			return true, nil
		}
		return false, nil
	}
	// APCP and ACPCP are requested from NOMADS but not mapped.
	return false, nil
}

func (p *gribPass) wind(param grib2.Param, level float64, c component) (bool, error) {
	index, ok := domain.WindLevel(level)
	if !ok {
		p.logger.Debug("wind level discarded", "param", param.String(), "level", level)
		return false, nil
	}
	pair := p.winds[level]
	if pair == nil {
		pair = &windPair{}
		p.winds[level] = pair
	}
	if param == grib2.ParamUGRD {
		pair.u = &c
	} else {
		pair.v = &c
	}
	if pair.u == nil || pair.v == nil {
		return false, nil
	}
	delete(p.winds, level)
	if pair.u.src != pair.v.src {
		return false, domain.ErrGridMismatch
	}
	return true, domain.ApplyWind(p.frame, pair.u.src, pair.u.values, pair.v.values, index)
}

// finish applies the fields that depend on others and the whole-grid
// derivations.
func (p *gribPass) finish() {
	f := p.frame
	for _, c := range p.base {
		if err := domain.ApplyCloudBase(f, c.src, c.values); err != nil {
			p.logger.Warn("cloud base skipped", "error", err)
		}
	}
	for _, c := range p.fog {
		if err := domain.ApplyFog(f, c.src, c.values); err != nil {
			p.logger.Warn("fog skipped", "error", err)
		}
	}
	for level, pair := range p.winds {
		p.logger.Debug("unpaired wind component", "level", level, "u", pair.u != nil, "v", pair.v != nil)
	}
	domain.ClassifyWeather(f)
	domain.ComputeAirmass(f)
}

func (p *gribPass) skipUnknown(m *grib2.Message, param grib2.Param) {
	p.unknown++
	if p.unknown > unknownParamsLogged {
		return
	}
	p.logger.Info("unknown grib2 parameter", "message", m.Index, "param", param.String())
}

func (p *gribPass) skip(m *grib2.Message, param grib2.Param, err error) {
	p.stats.Diagnostics++
	p.stats.Kinds[DiagnosticKind(err)]++
	p.logger.Warn("grib2 message skipped",
		"message", m.Index,
		"offset", m.Offset,
		"param", param.String(),
		"error", err,
	)
}

// DiagnosticKind names the class of a parse or decode problem for metrics.
func DiagnosticKind(err error) string {
	switch {
	case errors.Is(err, grib2.ErrBadIndicator):
		return "bad_indicator"
	case errors.Is(err, grib2.ErrSectionMissing):
		return "section_missing"
	case errors.Is(err, grib2.ErrUnsupportedTemplate):
		return "unsupported_template"
	case errors.Is(err, grib2.ErrUnsupportedDiscipline):
		return "unsupported_discipline"
	case errors.Is(err, grib2.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, grib2.ErrNoProgress):
		return "no_progress"
	case errors.Is(err, grib2.ErrBitWidth), errors.Is(err, grib2.ErrScaleRange):
		return "packing"
	case errors.Is(err, grib2.ErrShortPayload), errors.Is(err, grib2.ErrOutOfRange):
		return "short_payload"
	case errors.Is(err, grib2.ErrNoGrid), errors.Is(err, grib2.ErrPointCount),
		errors.Is(err, domain.ErrGridMismatch):
		return "grid"
	default:
		return "other"
	}
}
