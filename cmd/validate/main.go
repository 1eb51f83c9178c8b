// Command validate checks the integrity of a GRIB2 or fmap weather file: it
// decodes the file through the engine, range-checks every field, exports the
// frame to fmap, re-reads the export and compares it with the original, and
// synthesizes a METAR for every cell.
//
// Usage:
//
//	go run ./cmd/validate -in data/mock/gfs.t12z.pgrb2.0p25.f000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/fmap"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
)

// Plausible physical ranges for decoded fields.
const (
	minPressureHPa = 870
	maxPressureHPa = 1090
	minTempC       = -90
	maxTempC       = 60
	maxWindKt      = 300
	maxCloudCover  = 13
	maxErrorsShown = 20
	rangeSlack     = 1e-3
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	in := flag.String("in", "", "GRIB2 or fmap file to validate")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*in))
}

func run(path string) int {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.March, 26, 12, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Theater Weather Integrity Validation ===")
	fmt.Println()

	eng := engine.New(slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	snap, err := eng.LoadFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode %s: %v\n", path, err)
		return 1
	}
	f := snap.Frame

	phases := []*phase{
		validateHeader(f),
		validateRanges(f),
		validateExportRoundTrip(eng, f),
		validateMetar(f),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Source: %s (%s), %d messages, %d decoded, %d diagnostics, time %s\n",
		snap.Source, snap.Format, snap.Messages, snap.Decoded, snap.Diagnostics, f.Time)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsShown {
				fmt.Printf("  ... %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateHeader(f *domain.Frame) *phase {
	p := &phase{name: "Header and layout"}
	if f.Version < fmap.MinVersion || f.Version > fmap.MaxVersion {
		p.errorf("version %d outside %d..%d", f.Version, fmap.MinVersion, fmap.MaxVersion)
	}
	if x, y := f.Dimension(); x != domain.GridX || y != domain.GridY {
		p.errorf("dimension %dx%d", x, y)
	}
	if f.Time.Day < 1 || f.Time.Day > 31 {
		p.errorf("time tag day %d", f.Time.Day)
	}
	if f.Airmass.Direction < 0 || f.Airmass.Direction >= 360 {
		p.errorf("airmass direction %.1f", f.Airmass.Direction)
	}
	if f.Turbulence.Top < f.Turbulence.Bottom {
		p.errorf("turbulence top %d below bottom %d", f.Turbulence.Top, f.Turbulence.Bottom)
	}
	return p
}

func validateRanges(f *domain.Frame) *phase {
	p := &phase{name: "Field ranges"}
	for y := range domain.GridY {
		for x := range domain.GridX {
			if v := f.Pressure[y][x]; v < minPressureHPa || v > maxPressureHPa {
				p.errorf("(%d,%d) pressure %.1f hPa", x, y, v)
			}
			if v := f.Temperature[y][x]; v < minTempC || v > maxTempC {
				p.errorf("(%d,%d) temperature %.1f C", x, y, v)
			}
			if t := f.Type[y][x]; t < domain.WeatherClear || t > domain.WeatherInclement {
				p.errorf("(%d,%d) weather type %d", x, y, t)
			}
			if c := f.Cloud.Cover[y][x]; c < 0 || c > maxCloudCover {
				p.errorf("(%d,%d) cloud cover %d", x, y, c)
			}
			for level, w := range f.Wind[y][x] {
				if w.Speed < 0 || w.Speed > maxWindKt || math.IsNaN(w.Direction) {
					p.errorf("(%d,%d) wind level %d: %.0f/%.0f", x, y, level, w.Direction, w.Speed)
				}
			}
		}
	}
	// Analytics bound every cell of the field they summarize.
	for _, e := range []struct {
		name  string
		ext   domain.Extrema
		field domain.Extrema
	}{
		{"pressure", f.Analytics.Pressure, f.Pressure.Range()},
		{"temperature", f.Analytics.Temperature, f.Temperature.Range()},
	} {
		if e.ext.Min > e.ext.Max {
			p.errorf("%s analytics min %.2f above max %.2f", e.name, e.ext.Min, e.ext.Max)
			continue
		}
		if e.field.Min < e.ext.Min-rangeSlack || e.field.Max > e.ext.Max+rangeSlack {
			p.errorf("%s field range %.2f..%.2f outside analytics %.2f..%.2f",
				e.name, e.field.Min, e.field.Max, e.ext.Min, e.ext.Max)
		}
	}
	return p
}

func validateExportRoundTrip(eng *engine.Engine, f *domain.Frame) *phase {
	p := &phase{name: "Export and re-read"}
	buf, err := eng.Export()
	if err != nil {
		p.errorf("export: %v", err)
		return p
	}
	if want, err := fmap.Size(domain.Version); err != nil || len(buf) != want {
		p.errorf("export size %d, want %d", len(buf), want)
	}
	back := domain.NewFrame()
	if err := (fmap.Codec{}).Decode(buf, back); err != nil {
		p.errorf("re-read: %v", err)
		return p
	}
	// Export always writes every optional field.
	want := *f
	want.Version = domain.Version
	want.Fields = domain.FieldShower | domain.FieldVisibility | domain.FieldFog
	opts := cmp.Options{
		cmpopts.EquateApprox(1e-6, 1e-3),
		cmpopts.IgnoreFields(domain.Frame{}, "Analytics", "Time"),
	}
	if diff := cmp.Diff(want, *back, opts); diff != "" {
		for line := range strings.Lines(diff) {
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+") {
				p.errorf("%s", strings.TrimSpace(line))
			}
		}
	}
	return p
}

func validateMetar(f *domain.Frame) *phase {
	p := &phase{name: "METAR synthesis"}
	prefix := f.Time.String() + "Z "
	for _, units := range []domain.UnitSystem{domain.Metric, domain.Imperial} {
		for y := range domain.GridY {
			for x := range domain.GridX {
				m := domain.Metar(f, x, y, units)
				if !strings.HasPrefix(m, prefix) {
					p.errorf("(%d,%d) %s: %q", x, y, units, m)
				}
			}
		}
	}
	return p
}
