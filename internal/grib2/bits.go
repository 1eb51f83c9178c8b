package grib2

import "fmt"

// MaxBitWidth is the widest packed field supported.
const MaxBitWidth = 32

// Unpack returns the unsigned integer stored MSB-first at bit offset
// index*width in data. A field may straddle up to five octets.
func Unpack(data []byte, width uint, index int) (uint32, error) {
	if width < 1 || width > MaxBitWidth {
		return 0, fmt.Errorf("%w: %d", ErrBitWidth, width)
	}
	if index < 0 {
		return 0, fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	start := uint64(index) * uint64(width)
	end := start + uint64(width) // exclusive
	if end > uint64(len(data))*8 {
		return 0, fmt.Errorf("%w: bits %d..%d of %d", ErrOutOfRange, start, end, len(data)*8)
	}
	return unpack(data, width, start), nil
}

// unpack assumes width and range have been validated.
func unpack(data []byte, width uint, start uint64) uint32 {
	first := start / 8
	last := (start + uint64(width) - 1) / 8

	var acc uint64
	for i := first; i <= last; i++ {
		acc = acc<<8 | uint64(data[i])
	}
	shift := (last+1)*8 - (start + uint64(width))
	mask := uint64(1)<<width - 1
	return uint32((acc >> shift) & mask)
}
