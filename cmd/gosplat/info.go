package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gosplat/pkg/analysis"
	"github.com/philipparndt/gosplat/pkg/cloud"
	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a point cloud file",
	Long:  "Show comprehensive information including point count, bounding box, dimensions, and density statistics.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]

	c, err := cloud.Parse(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing PLY file: %v\n", err)
		os.Exit(1)
	}

	stats := analysis.AnalyzeCloud(c)

	fmt.Println("Point Cloud Information")
	fmt.Println("=======================")
	if c.Name != "" {
		fmt.Printf("Name: %s\n", c.Name)
	}
	fmt.Printf("File: %s\n\n", filename)

	fmt.Println("Cloud Statistics:")
	fmt.Printf("  Points: %d\n", stats.PointCount)
	fmt.Printf("  Colors: %v\n", stats.HasColors)
	fmt.Printf("  Density: %.6f points per cubic unit\n\n", stats.Density)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", geometry.FormatVector(stats.BoundingBox.Min))
	fmt.Printf("  Max: %s\n", geometry.FormatVector(stats.BoundingBox.Max))
	fmt.Printf("  Center: %s\n\n", geometry.FormatVector(stats.BoundingBox.Center()))

	fmt.Println("Dimensions:")
	fmt.Printf("  Width (X): %.6f units\n", stats.Dimensions.X)
	fmt.Printf("  Depth (Y): %.6f units\n", stats.Dimensions.Y)
	fmt.Printf("  Height (Z): %.6f units\n", stats.Dimensions.Z)
	fmt.Printf("  Diagonal: %.6f units\n\n", stats.BoundingBox.Diagonal())

	fmt.Println("Point Spacing:")
	fmt.Printf("  Centroid: %s\n", geometry.FormatVector(stats.Centroid))
	fmt.Printf("  Estimated spacing: %.6f units\n", analysis.EstimateSpacing(c))
}
