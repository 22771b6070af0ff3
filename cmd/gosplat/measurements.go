package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/gosplat/internal/measure"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/store"
	"github.com/philipparndt/gosplat/pkg/viewer"
	"github.com/spf13/cobra"
)

var stateDir string

var measurementsCmd = &cobra.Command{
	Use:   "measurements [file]",
	Short: "List saved measurements for a point cloud file",
	Long: `List the distance and area measurements saved by the interactive viewer.
Measurements are stored in a per-user sidecar file keyed by the cloud path.`,
	Args: cobra.ExactArgs(1),
	Run:  runMeasurements,
}

func init() {
	rootCmd.AddCommand(measurementsCmd)

	measurementsCmd.Flags().StringVar(&stateDir, "state-dir", "", "Directory holding measurement state files")
}

func runMeasurements(cmd *cobra.Command, args []string) {
	filename, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path: %v\n", err)
		os.Exit(1)
	}

	c, err := cloud.Parse(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing PLY file: %v\n", err)
		os.Exit(1)
	}

	dir := stateDir
	if dir == "" {
		dir, err = store.DefaultDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error locating state directory: %v\n", err)
			os.Exit(1)
		}
	}

	st, err := store.NewFileStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening state directory: %v\n", err)
		os.Exit(1)
	}

	engine := measure.NewEngine(viewer.NewView(c))
	engine.LoadFrom(st, filename)

	segments := engine.Segments()
	areas := engine.Areas()

	fmt.Println("Saved Measurements")
	fmt.Println("==================")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Calibration scale: %g\n\n", engine.Scale())

	if len(segments) == 0 && len(areas) == 0 {
		fmt.Println("No measurements saved for this file.")
		return
	}

	for _, s := range segments {
		length, ok := engine.SegmentLength(s.ID)
		if !ok {
			continue
		}
		fmt.Printf("%s: %s", s.Name, geometry.FormatLength(length))
		if s.Axis >= 0 {
			fmt.Printf(" (along %s)", geometry.AxisName(s.Axis))
		}
		fmt.Println()
		if deltas, ok := engine.SegmentAxisDeltas(s.ID); ok {
			fmt.Printf("  dX: %.6f  dY: %.6f  dZ: %.6f\n", deltas[0], deltas[1], deltas[2])
		}
	}

	for _, a := range areas {
		value, ok := engine.AreaValue(a.ID)
		if !ok {
			continue
		}
		perimeter, _ := engine.AreaPerimeter(a.ID)
		fmt.Printf("%s: %s (perimeter %s, %d vertices)\n",
			a.Name, geometry.FormatArea(value), geometry.FormatLength(perimeter), len(a.Vertices))
	}
}
