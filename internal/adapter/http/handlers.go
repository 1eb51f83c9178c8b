package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/fmap"
	"github.com/couchcryptid/theater-wx-engine/internal/storage/sqlite"
)

const (
	defaultPassLimit = 20
	maxPassLimit     = 500
)

var errBadParam = errors.New("invalid query parameter")

type analyticsResponse struct {
	Version    uint32           `json:"version"`
	TimeTag    string           `json:"time_tag"`
	Analytics  domain.Analytics `json:"analytics"`
	Airmass    domain.Vector    `json:"airmass"`
	Turbulence domain.Layer     `json:"turbulence"`
	Contrails  [4]uint32        `json:"contrails"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.weather.Current()
	if snap == nil {
		writeError(w, engine.ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleChanged(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"changed": s.weather.Changed()})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	f := s.weather.Frame()
	if !f.Available() {
		writeError(w, domain.ErrUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{
		Version:    f.Version,
		TimeTag:    f.Time.String(),
		Analytics:  f.Analytics,
		Airmass:    f.Airmass,
		Turbulence: f.Turbulence,
		Contrails:  f.Contrails,
	})
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	x, y, err := cellParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := domain.PointAt(s.weather.Frame(), x, y)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMetar(w http.ResponseWriter, r *http.Request) {
	x, y, err := cellParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	units := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if units, err = domain.ParseUnitSystem(u); err != nil {
			writeError(w, fmt.Errorf("%w: %w", errBadParam, err))
			return
		}
	}
	f := s.weather.Frame()
	if _, err := domain.PointAt(f, x, y); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metar": domain.Metar(f, x, y, units),
		"imc":   domain.IsIMC(f, x, y),
		"units": units.String(),
	})
}

func (s *Server) handleWinds(w http.ResponseWriter, r *http.Request) {
	x, y, err := cellParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	level, err := intParam(r, "level")
	if err != nil {
		writeError(w, err)
		return
	}
	group, err := domain.WindsAloft(s.weather.Frame(), x, y, level)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"winds":       group,
		"altitude_ft": domain.WindAltitudesFt[level],
	})
}

func (s *Server) handleDensityAltitude(w http.ResponseWriter, r *http.Request) {
	x, y, err := cellParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	elev, err := strconv.ParseFloat(r.URL.Query().Get("elevation"), 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: elevation", errBadParam))
		return
	}
	da, err := domain.DensityAltitude(s.weather.Frame(), x, y, elev)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"density_altitude_ft": da})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	buf, err := s.weather.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	name := fmap.Filename(s.weather.Frame().Time)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	limit := defaultPassLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxPassLimit {
			writeError(w, fmt.Errorf("%w: limit", errBadParam))
			return
		}
		limit = n
	}
	passes, err := s.history.RecentPasses(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []sqlite.PassRecord{}
	}
	writeJSON(w, http.StatusOK, passes)
}

func (s *Server) handlePassReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.history.ReportsForPass(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func cellParams(r *http.Request) (int, int, error) {
	x, err := intParam(r, "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := intParam(r, "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errBadParam, name)
	}
	return v, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, engine.ErrNoData):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errBadParam), errors.Is(err, domain.ErrOutOfGrid), errors.Is(err, domain.ErrWindLevel):
		status = http.StatusBadRequest
	case errors.Is(err, sqlite.ErrPassNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
