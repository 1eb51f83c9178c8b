package fmap

import "errors"

var (
	// ErrShortBuffer is returned when a buffer ends before its layout does.
	ErrShortBuffer = errors.New("fmap: buffer shorter than layout")
	// ErrUnsupportedVersion is returned for versions outside 1..8.
	ErrUnsupportedVersion = errors.New("fmap: unsupported version")
	// ErrDimension is returned when the header grid is not 59×59.
	ErrDimension = errors.New("fmap: unexpected grid dimension")
)
