// Package grib2test builds synthetic GRIB2 messages for tests and fixtures.
package grib2test

import (
	"encoding/binary"
	"math"
	"time"
)

// Field describes one message to encode with grid template 3.0, product
// template 4.0 (or 4.8) and simple packing.
type Field struct {
	Discipline   uint8 // section 0, default meteorological
	Category     uint8
	Number       uint8
	SurfaceType  uint8
	SurfaceValue uint32

	Ni, Nj int
	Values []float64 // row-major, len Ni*Nj

	Bits         uint8 // 0 picks the narrowest width that fits
	DecimalScale int16
	BinaryScale  int16

	Reference    time.Time
	TimeUnit     uint8 // code table 4.4, default hour
	ForecastTime uint32

	// Statistical selects product template 4.8.
	Statistical bool
	// GridTemplate overrides the grid template number (default 0).
	GridTemplate uint16
}

// Message encodes f as a complete GRIB2 message.
func Message(f Field) []byte {
	var body []byte
	body = append(body, identification(f)...)
	body = append(body, grid(f)...)
	body = append(body, product(f)...)

	sp, packed := pack(f)
	body = append(body, representation(f, sp)...)
	body = append(body, bitmapAbsent()...)
	body = append(body, data(packed)...)
	body = append(body, "7777"...)

	msg := make([]byte, 16, 16+len(body))
	copy(msg, "GRIB")
	msg[6] = f.Discipline
	msg[7] = 2 // edition
	binary.BigEndian.PutUint64(msg[8:], uint64(16+len(body)))
	return append(msg, body...)
}

// Concat joins encoded messages back to back.
func Concat(msgs ...[]byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, m...)
	}
	return out
}

// Uniform returns an Ni*Nj slice holding v everywhere.
func Uniform(ni, nj int, v float64) []float64 {
	out := make([]float64, ni*nj)
	for i := range out {
		out[i] = v
	}
	return out
}

type packing struct {
	ref  float32
	bits uint8
}

func pack(f Field) (packing, []byte) {
	dec := math.Pow10(int(f.DecimalScale))
	bin := math.Ldexp(1, int(f.BinaryScale))

	lo := math.Inf(1)
	for _, v := range f.Values {
		lo = math.Min(lo, v*dec)
	}
	if len(f.Values) == 0 {
		lo = 0
	}
	ref := float32(lo)

	xs := make([]uint64, len(f.Values))
	var hi uint64
	for i, v := range f.Values {
		x := math.Round((v*dec - float64(ref)) / bin)
		if x < 0 {
			x = 0
		}
		xs[i] = uint64(x)
		hi = max(hi, xs[i])
	}

	bits := f.Bits
	if bits == 0 && hi > 0 {
		for uint64(1)<<bits <= hi {
			bits++
		}
	}

	w := &bitWriter{}
	if bits > 0 {
		for _, x := range xs {
			w.write(x, uint(bits))
		}
	}
	return packing{ref: ref, bits: bits}, w.bytes()
}

func section(number uint8, length int) []byte {
	b := make([]byte, length)
	binary.BigEndian.PutUint32(b, uint32(length))
	b[4] = number
	return b
}

func identification(f Field) []byte {
	ref := f.Reference
	if ref.IsZero() {
		ref = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
	}
	b := section(1, 21)
	binary.BigEndian.PutUint16(b[5:], 7) // NCEP
	b[9] = 2
	b[11] = 1 // start of forecast
	binary.BigEndian.PutUint16(b[12:], uint16(ref.Year()))
	b[14] = byte(ref.Month())
	b[15] = byte(ref.Day())
	b[16] = byte(ref.Hour())
	b[17] = byte(ref.Minute())
	b[18] = byte(ref.Second())
	b[20] = 1 // forecast product
	return b
}

func grid(f Field) []byte {
	b := section(3, 72)
	binary.BigEndian.PutUint32(b[6:], uint32(f.Ni*f.Nj))
	binary.BigEndian.PutUint16(b[12:], f.GridTemplate)
	b[14] = 6 // spherical earth, 6371229 m
	binary.BigEndian.PutUint32(b[30:], uint32(f.Ni))
	binary.BigEndian.PutUint32(b[34:], uint32(f.Nj))
	binary.BigEndian.PutUint32(b[46:], signMagnitude32(36_000_000))
	binary.BigEndian.PutUint32(b[50:], signMagnitude32(124_000_000))
	b[54] = 0x30
	binary.BigEndian.PutUint32(b[55:], signMagnitude32(45_000_000))
	binary.BigEndian.PutUint32(b[59:], signMagnitude32(133_000_000))
	binary.BigEndian.PutUint32(b[63:], 250_000)
	binary.BigEndian.PutUint32(b[67:], 250_000)
	return b
}

func product(f Field) []byte {
	length, template := 34, uint16(0)
	if f.Statistical {
		length, template = 58, 8
	}
	b := section(4, length)
	binary.BigEndian.PutUint16(b[7:], template)
	b[9] = f.Category
	b[10] = f.Number
	b[11] = 2  // forecast
	b[13] = 96 // GFS
	unit := f.TimeUnit
	if unit == 0 && f.ForecastTime != 0 {
		unit = 1
	}
	b[17] = unit
	binary.BigEndian.PutUint32(b[18:], f.ForecastTime)
	b[22] = f.SurfaceType
	binary.BigEndian.PutUint32(b[24:], f.SurfaceValue)
	b[28] = 255
	b[29] = 255
	binary.BigEndian.PutUint32(b[30:], math.MaxUint32)
	if f.Statistical {
		ref := f.Reference
		if ref.IsZero() {
			ref = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
		}
		end := ref.Add(time.Duration(f.ForecastTime) * time.Hour)
		binary.BigEndian.PutUint16(b[34:], uint16(end.Year()))
		b[36] = byte(end.Month())
		b[37] = byte(end.Day())
		b[38] = byte(end.Hour())
		b[39] = byte(end.Minute())
		b[40] = byte(end.Second())
		b[41] = 1
	}
	return b
}

func representation(f Field, sp packing) []byte {
	b := section(5, 21)
	binary.BigEndian.PutUint32(b[5:], uint32(f.Ni*f.Nj))
	binary.BigEndian.PutUint32(b[11:], math.Float32bits(sp.ref))
	binary.BigEndian.PutUint16(b[15:], signMagnitude16(f.BinaryScale))
	binary.BigEndian.PutUint16(b[17:], signMagnitude16(f.DecimalScale))
	b[19] = sp.bits
	return b
}

func bitmapAbsent() []byte {
	b := section(6, 6)
	b[5] = 255
	return b
}

func data(payload []byte) []byte {
	b := section(7, 5+len(payload))
	copy(b[5:], payload)
	return b
}

func signMagnitude16(v int16) uint16 {
	if v < 0 {
		return uint16(-v) | 0x8000
	}
	return uint16(v)
}

func signMagnitude32(v int32) uint32 {
	if v < 0 {
		return uint32(-v) | 0x80000000
	}
	return uint32(v)
}

type bitWriter struct {
	buf  []byte
	used uint // bits used in the last byte
}

func (w *bitWriter) write(v uint64, width uint) {
	for i := int(width) - 1; i >= 0; i-- {
		if w.used == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(i)&1 == 1 {
			w.buf[len(w.buf)-1] |= 1 << (7 - w.used)
		}
		w.used = (w.used + 1) % 8
	}
}

func (w *bitWriter) bytes() []byte { return w.buf }
