package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gosplat/pkg/analysis"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	point1X, point1Y, point1Z float64
	point2X, point2Y, point2Z float64
)

var measureCmd = &cobra.Command{
	Use:   "measure [file]",
	Short: "Measure distance between two points",
	Long: `Measure the straight-line distance between two 3D points.
The tool also reports the nearest cloud points to each coordinate.`,
	Args: cobra.ExactArgs(1),
	Run:  runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)

	measureCmd.Flags().Float64Var(&point1X, "x1", 0.0, "X coordinate of first point")
	measureCmd.Flags().Float64Var(&point1Y, "y1", 0.0, "Y coordinate of first point")
	measureCmd.Flags().Float64Var(&point1Z, "z1", 0.0, "Z coordinate of first point")
	measureCmd.Flags().Float64Var(&point2X, "x2", 0.0, "X coordinate of second point")
	measureCmd.Flags().Float64Var(&point2Y, "y2", 0.0, "Y coordinate of second point")
	measureCmd.Flags().Float64Var(&point2Z, "z2", 0.0, "Z coordinate of second point")

	measureCmd.MarkFlagsRequiredTogether("x1", "y1", "z1", "x2", "y2", "z2")
}

func runMeasure(cmd *cobra.Command, args []string) {
	filename := args[0]

	p1 := geometry.NewVector3(point1X, point1Y, point1Z)
	p2 := geometry.NewVector3(point2X, point2Y, point2Z)

	c, err := cloud.Parse(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing PLY file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Point-to-Point Measurement")
	fmt.Println("==========================")

	idx1, dist1 := analysis.NearestPoint(c, p1)
	idx2, dist2 := analysis.NearestPoint(c, p2)

	fmt.Printf("\nPoint 1: %s\n", geometry.FormatVector(p1))
	if idx1 >= 0 {
		fmt.Printf("  Nearest cloud point: %s (distance: %.6f)\n", geometry.FormatVector(c.Points[idx1]), dist1)
	}

	fmt.Printf("\nPoint 2: %s\n", geometry.FormatVector(p2))
	if idx2 >= 0 {
		fmt.Printf("  Nearest cloud point: %s (distance: %.6f)\n", geometry.FormatVector(c.Points[idx2]), dist2)
	}

	distance := p1.Distance(p2)
	fmt.Printf("\nDirect distance: %.6f units\n", distance)

	if idx1 >= 0 && idx2 >= 0 {
		pointDistance := c.Points[idx1].Distance(c.Points[idx2])
		fmt.Printf("Distance between nearest cloud points: %.6f units\n", pointDistance)
	}
}
