package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.DecodePasses.WithLabelValues("grib2", "success").Inc()
	m.GribMessages.WithLabelValues("PRMSL").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodePasses.WithLabelValues("grib2", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GribMessages.WithLabelValues("PRMSL")))

	// a second set must not collide
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
