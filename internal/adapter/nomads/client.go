// Package nomads fetches GFS products from the NOAA NOMADS grib filter,
// restricted to the variables and levels the engine decodes and to a
// 9 by 9 degree box around the theater datum.
package nomads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
)

const (
	theaterSpanDeg = 9
	maxProductSize = 256 << 20
	productDays    = 7
	dateLayout     = "20060102"
)

// ErrProductTooLarge is returned when a product exceeds the download limit.
var ErrProductTooLarge = errors.New("nomads product too large")

var variables = []string{"ACPCP", "APCP", "PRATE", "PRMSL", "TCDC", "TMP", "UGRD", "VGRD", "VIS", "PRES"}

var levels = []string{
	"100_mb", "150_mb", "200_mb", "300_mb", "400_mb", "500_mb", "650_mb", "700_mb", "850_mb", "925_mb",
	"2_m_above_ground", "10_m_above_ground",
	"convective_cloud_layer", "high_cloud_layer", "low_cloud_layer", "mean_sea_level", "middle_cloud_layer", "surface",
	"convective_cloud_bottom_level", "convective_cloud_top_level",
	"high_cloud_bottom_level", "high_cloud_top_level",
	"low_cloud_bottom_level", "low_cloud_top_level",
	"middle_cloud_bottom_level", "middle_cloud_top_level",
}

// Datum is the south-west anchor of the theater in degrees.
type Datum struct {
	Lat float64
	Lon float64
}

// Box is the filter subregion in whole degrees.
type Box struct {
	Top, Left, Right, Bottom int
}

// BoxFor rounds the datum to whole degrees and spans the theater from it.
func BoxFor(d Datum) Box {
	bottom := int(math.Floor(d.Lat + 0.5))
	left := int(math.Floor(d.Lon + 0.5))
	return Box{
		Top:    bottom + theaterSpanDeg,
		Left:   left,
		Right:  left + theaterSpanDeg,
		Bottom: bottom,
	}
}

// Client implements domain.ProductSource against the NOMADS grib filter.
type Client struct {
	baseURL    string
	datum      Datum
	maxSize    int64
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NOMADS filter client for the theater at datum.
func NewClient(baseURL string, datum Datum, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "?"),
		datum:   datum,
		maxSize: maxProductSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// URL builds the filter request for ref. The directory and file names
// follow the gfs.YYYYMMDD/CC/atmos/gfs.tCCz.pgrb2.0p25.fFFF convention.
func (c *Client) URL(ref domain.ProductRef) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	fmt.Fprintf(&b, "?dir=%%2Fgfs.%s%%2F%02d%%2Fatmos", ref.Date, ref.Cycle)
	fmt.Fprintf(&b, "&file=gfs.t%02dz.pgrb2.0p25.f%03d", ref.Cycle, ref.Forecast)
	for _, v := range variables {
		b.WriteString("&var_" + v + "=on")
	}
	for _, l := range levels {
		b.WriteString("&lev_" + l + "=on")
	}
	box := BoxFor(c.datum)
	fmt.Fprintf(&b, "&subregion=&toplat=%d&leftlon=%d&rightlon=%d&bottomlat=%d", box.Top, box.Left, box.Right, box.Bottom)
	return b.String()
}

// Fetch downloads the filtered GRIB2 product.
func (c *Client) Fetch(ctx context.Context, ref domain.ProductRef) ([]byte, error) {
	u := c.URL(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.NomadsAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.NomadsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("nomads request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.NomadsRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nomads API error: status %d: %s", resp.StatusCode, body)
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		c.metrics.NomadsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read product: %w", err)
	}
	if int64(len(buf)) > c.maxSize {
		c.metrics.NomadsRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: over %d bytes", ErrProductTooLarge, c.maxSize)
	}
	c.metrics.NomadsRequests.WithLabelValues("success").Inc()
	c.logger.Info("nomads product fetched",
		"date", ref.Date,
		"cycle", ref.Cycle,
		"forecast", ref.Forecast,
		"bytes", len(buf),
	)
	return buf, nil
}

// AvailableProducts lists the run dates expected on the server, starting
// the day before now and going back a week. The list is estimated from the
// publication schedule rather than queried.
func AvailableProducts(now time.Time) []string {
	day := now.UTC().AddDate(0, 0, -1)
	out := make([]string, 0, productDays)
	for range productDays {
		out = append(out, day.Format(dateLayout))
		day = day.AddDate(0, 0, -1)
	}
	return out
}

// Products is AvailableProducts at the engine clock.
func Products() []string { return AvailableProducts(domain.Now()) }
