package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/grib2"
)

func addInspectCmd(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the messages of a GRIB2 product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tOFFSET\tPARAM\tSURFACE\tGRID\tORIGIN\tPACKING\tDIAGNOSTICS")
			n := grib2.NewParser(buf, logger()).Scan(func(m *grib2.Message) {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
					m.Index, m.Offset, m.Param(), surface(m), gridSize(m), origin(m), packing(m), len(m.Diagnostics))
			})
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d messages\n", n)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

func addConvertCmd(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Decode GRIB2 or fmap input and write a version 8 fmap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, snap, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			buf, err := eng.Export()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], buf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d/%d messages decoded, time %s -> %s (%d bytes)\n",
				args[0], snap.Format, snap.Decoded, snap.Messages, snap.Frame.Time, args[1], len(buf))
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

func addMetarCmd(rootCmd *cobra.Command) {
	var imperial bool
	cmd := &cobra.Command{
		Use:   "metar FILE X Y",
		Short: "Print the synthesized METAR of a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseCell(args[1:])
			if err != nil {
				return err
			}
			_, snap, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			units := domain.Metric
			if imperial {
				units = domain.Imperial
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.Metar(snap.Frame, x, y, units))
			return nil
		},
	}
	cmd.Flags().BoolVar(&imperial, "imperial", false, "Report visibility in statute miles and altimeter in inHg")
	rootCmd.AddCommand(cmd)
}

func addPointCmd(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "point FILE X Y",
		Short: "Print every field of a cell as JSON",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseCell(args[1:])
			if err != nil {
				return err
			}
			_, snap, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := domain.PointAt(snap.Frame, x, y)
			if err != nil {
				return err
			}
			winds := make([]string, 0, domain.WindLevels)
			for level := range domain.WindLevels {
				group, err := domain.WindsAloft(snap.Frame, x, y, level)
				if err != nil {
					return err
				}
				winds = append(winds, fmt.Sprintf("%d:%s", domain.WindAltitudesFt[level], group))
			}
			return printJSON(cmd.OutOrStdout(), struct {
				domain.Point
				WindsAloft []string `json:"winds_aloft"`
				Doppler    int      `json:"doppler"`
			}{p, winds, domain.Doppler(snap.Frame, x, y)})
		},
	}
	rootCmd.AddCommand(cmd)
}

func surface(m *grib2.Message) string {
	s, ok := m.Surface()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d:%g", s.Type, s.Value())
}

func gridSize(m *grib2.Message) string {
	ni, nj, err := m.Dimensions()
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%dx%d", ni, nj)
}

// origin prints the first grid point in degrees.
func origin(m *grib2.Message) string {
	g := m.Grid.LatLon
	if g == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f,%.3f", g.Degrees(g.La1), g.Degrees(g.Lo1))
}

func packing(m *grib2.Message) string {
	sp := m.Representation.Simple
	if sp == nil {
		return fmt.Sprintf("template %d", m.Representation.Template)
	}
	return fmt.Sprintf("R=%g E=%d D=%d bits=%d", sp.Reference, sp.BinaryScale, sp.DecimalScale, sp.Bits)
}
