package domain

import "context"

// ProductSource fetches raw GRIB2 products from a remote model archive.
type ProductSource interface {
	// Fetch returns the complete GRIB2 buffer for ref.
	Fetch(ctx context.Context, ref ProductRef) ([]byte, error)
}
