// Command genmock writes a synthetic GFS-like GRIB2 product covering the
// theater and, optionally, the version 8 fmap the engine decodes it to. The
// fixtures drive the validate command and manual testing of the service.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -grib-out data/mock/gfs.t12z.pgrb2.0p25.f000 \
//	  -fmap-out data/mock/261200.fmap
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/fmap"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2/grib2test"
)

// Source grid size: a 9 degree box at 0.25 degree resolution.
const (
	sourceNi = 37
	sourceNj = 37
)

var windLevels = []struct {
	surfaceType uint8
	value       uint32
	speed       float64 // m/s
}{
	{grib2.SurfaceAboveGround, 10, 4},
	{grib2.SurfaceIsobaric, 92500, 8},
	{grib2.SurfaceIsobaric, 85000, 11},
	{grib2.SurfaceIsobaric, 70000, 14},
	{grib2.SurfaceIsobaric, 65000, 16},
	{grib2.SurfaceIsobaric, 50000, 21},
	{grib2.SurfaceIsobaric, 40000, 26},
	{grib2.SurfaceIsobaric, 30000, 34},
	{grib2.SurfaceIsobaric, 20000, 38},
	{grib2.SurfaceIsobaric, 10000, 22},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	gribOut := flag.String("grib-out", "", "output path for the GRIB2 fixture")
	fmapOut := flag.String("fmap-out", "", "optional output path for the decoded fmap fixture")
	ref := flag.String("reference", "2026-03-26T06:00:00Z", "model reference time (RFC3339)")
	forecast := flag.Uint("forecast", 6, "forecast offset in hours")
	flag.Parse()

	if *gribOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -grib-out")
	}
	reference, err := time.Parse(time.RFC3339, *ref)
	if err != nil {
		return fmt.Errorf("parse -reference: %w", err)
	}

	buf := build(reference, uint32(*forecast))
	if err := write(*gribOut, buf); err != nil {
		return err
	}
	log.Printf("grib2: %d bytes -> %s", len(buf), *gribOut)

	if *fmapOut == "" {
		return nil
	}
	frame, stats, err := engine.DecodeGRIB2(buf, nil)
	if err != nil {
		return fmt.Errorf("decode generated product: %w", err)
	}
	out := fmap.Codec{}.Encode(frame)
	if err := write(*fmapOut, out); err != nil {
		return err
	}
	log.Printf("fmap: %d of %d messages decoded, time %s -> %s", stats.Decoded, stats.Messages, frame.Time, *fmapOut)
	return nil
}

func write(path string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// build encodes every parameter the engine maps, plus one it ignores.
func build(reference time.Time, forecast uint32) []byte {
	msg := func(cat, num, surfaceType uint8, surfaceValue uint32, decimal int16, fn func(i, j int) float64) []byte {
		return grib2test.Message(grib2test.Field{
			Category:     cat,
			Number:       num,
			SurfaceType:  surfaceType,
			SurfaceValue: surfaceValue,
			Ni:           sourceNi,
			Nj:           sourceNj,
			Values:       field(fn),
			DecimalScale: decimal,
			Reference:    reference,
			ForecastTime: forecast,
		})
	}

	var msgs [][]byte
	msgs = append(msgs,
		// Low pressure centred in the north-west of the box.
		msg(3, 1, grib2.SurfaceMeanSea, 0, 0, func(i, j int) float64 {
			return 101800 - 1400*bump(i, j, 10, 26, 9)
		}),
		msg(0, 0, grib2.SurfaceAboveGround, 2, 1, func(i, j int) float64 {
			return 285 + 0.25*float64(i) - 0.2*float64(j)
		}),
		msg(19, 0, grib2.SurfaceGround, 0, 0, func(i, j int) float64 {
			return 24000 - 21000*bump(i, j, 10, 26, 6)
		}),
		msg(1, 7, grib2.SurfaceGround, 0, 5, func(i, j int) float64 {
			return 0.0012 * bump(i, j, 10, 26, 5)
		}),
		msg(1, 8, grib2.SurfaceGround, 0, 1, func(i, j int) float64 {
			return 4 * bump(i, j, 10, 26, 5)
		}),
		msg(3, 0, grib2.SurfaceConvectiveCloudBase, 0, 0, func(i, j int) float64 {
			return 86000 + 6000*bump(i, j, 10, 26, 8)
		}),
		msg(3, 0, grib2.SurfaceLowCloudBottom, 0, 0, func(i, j int) float64 {
			return 99000 + 1800*bump(i, j, 28, 6, 4)
		}),
	)
	for _, p := range []uint32{70000, 50000, 30000} {
		msgs = append(msgs, msg(6, 1, grib2.SurfaceIsobaric, p, 0, func(i, j int) float64 {
			return math.Round(100 * bump(i, j, 10, 26, 10))
		}))
	}
	for _, lvl := range windLevels {
		// Westerlies veering slightly with height.
		dir := 250 + 3*float64(lvl.value%7)
		rad := dir * math.Pi / 180
		u := -lvl.speed * math.Sin(rad)
		v := -lvl.speed * math.Cos(rad)
		msgs = append(msgs,
			msg(2, 2, lvl.surfaceType, lvl.value, 1, func(_, _ int) float64 { return u }),
			msg(2, 3, lvl.surfaceType, lvl.value, 1, func(_, _ int) float64 { return v }),
		)
	}
	// Relative humidity is not mapped and exercises the skip path.
	msgs = append(msgs, msg(1, 1, grib2.SurfaceAboveGround, 2, 0, func(_, _ int) float64 { return 70 }))

	return grib2test.Concat(msgs...)
}

func field(fn func(i, j int) float64) []float64 {
	out := make([]float64, 0, sourceNi*sourceNj)
	for j := range sourceNj {
		for i := range sourceNi {
			out = append(out, fn(i, j))
		}
	}
	return out
}

// bump is a unit gaussian centred on (ci, cj) with the given radius in cells.
func bump(i, j, ci, cj int, radius float64) float64 {
	di := float64(i - ci)
	dj := float64(j - cj)
	return math.Exp(-(di*di + dj*dj) / (2 * radius * radius))
}
