package grib2

import (
	"fmt"
	"math"
)

// Scale factor limits. Outside these the recovered values are not
// representable as finite float64.
const (
	MaxBinaryScale  = 127
	MaxDecimalScale = 38
)

// SimplePacking is data representation template 5.0.
type SimplePacking struct {
	Reference    float32 // R
	BinaryScale  int16   // E
	DecimalScale int16   // D
	Bits         uint8
	FieldType    uint8 // code table 5.1: 0 float, 1 integer
}

// Validate checks the packing parameters. A width of zero is valid and
// describes a constant field equal to R / 10^D.
func (s SimplePacking) Validate() error {
	if s.Bits > MaxBitWidth {
		return fmt.Errorf("%w: %d", ErrBitWidth, s.Bits)
	}
	if s.BinaryScale > MaxBinaryScale || s.BinaryScale < -MaxBinaryScale {
		return fmt.Errorf("%w: binary scale %d", ErrScaleRange, s.BinaryScale)
	}
	if s.DecimalScale > MaxDecimalScale || s.DecimalScale < -MaxDecimalScale {
		return fmt.Errorf("%w: decimal scale %d", ErrScaleRange, s.DecimalScale)
	}
	return nil
}

// Value applies the simple packing formula to a packed integer.
func (s SimplePacking) Value(x uint32) float64 {
	return (float64(s.Reference) + float64(x)*math.Ldexp(1, int(s.BinaryScale))) /
		math.Pow10(int(s.DecimalScale))
}

// Decode unpacks and scales the value at index i of payload.
func (s SimplePacking) Decode(payload []byte, i int) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.Bits == 0 {
		return s.Value(0), nil
	}
	x, err := Unpack(payload, uint(s.Bits), i)
	if err != nil {
		return 0, err
	}
	return s.Value(x), nil
}

// DecodeAll recovers n values from payload. The payload must hold at least
// n packed fields.
func (s SimplePacking) DecodeAll(payload []byte, n int) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d points", ErrOutOfRange, n)
	}

	out := make([]float64, n)
	ref := float64(s.Reference)
	bin := math.Ldexp(1, int(s.BinaryScale))
	dec := math.Pow10(int(s.DecimalScale))

	if s.Bits == 0 {
		v := ref / dec
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	need := uint64(n) * uint64(s.Bits)
	if have := uint64(len(payload)) * 8; have < need {
		return nil, fmt.Errorf("%w: have %d bits, need %d", ErrShortPayload, have, need)
	}

	width := uint(s.Bits)
	for i := range out {
		x := unpack(payload, width, uint64(i)*uint64(width))
		out[i] = (ref + float64(x)*bin) / dec
	}
	return out, nil
}
