package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/theater-wx-engine/internal/grib2"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2/grib2test"
)

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gfs.t12z.pgrb2.0p25.f000")
	buf := grib2test.Message(grib2test.Field{
		Category:    3,
		Number:      1,
		SurfaceType: grib2.SurfaceMeanSea,
		Ni:          2,
		Nj:          2,
		Values:      grib2test.Uniform(2, 2, 101000),
	})
	require.NoError(t, os.WriteFile(path, buf, 0o600))

	root := &cobra.Command{Use: "wxtool"}
	addInspectCmd(root)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"inspect", path})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "ORIGIN")
	assert.Contains(t, out.String(), "PRMSL")
	assert.Contains(t, out.String(), "2x2")
	assert.Contains(t, out.String(), "36.000,124.000")
	assert.Contains(t, out.String(), "1 messages")
}

func TestOriginWithoutGrid(t *testing.T) {
	assert.Equal(t, "-", origin(&grib2.Message{}))
}
