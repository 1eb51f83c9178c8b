// Command wxtool is an operator CLI for theater weather files: it lists the
// messages of a GRIB2 product, converts GRIB2 or fmap input to version 8
// fmap, and prints the METAR or full point data of a cell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/observability"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "wxtool",
		Short:         "Inspect, convert and query theater weather files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log decode diagnostics")

	addInspectCmd(rootCmd)
	addConvertCmd(rootCmd)
	addMetarCmd(rootCmd)
	addPointCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return sharedobs.NewLogger("debug", "text")
}

// load decodes a file through a throwaway engine.
func load(ctx context.Context, path string) (*engine.Engine, *engine.Snapshot, error) {
	eng := engine.New(logger(), observability.NewMetricsForTesting())
	snap, err := eng.LoadFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return eng, snap, nil
}

func parseCell(args []string) (int, int, error) {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("y: %w", err)
	}
	if !domain.InGrid(x, y) {
		return 0, 0, fmt.Errorf("%w: (%d, %d)", domain.ErrOutOfGrid, x, y)
	}
	return x, y, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
