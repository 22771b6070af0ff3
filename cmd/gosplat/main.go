package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gosplat/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gosplat",
	Short: "A modern CLI tool for inspecting and measuring point clouds",
	Long: `gosplat is a command-line tool for analyzing PLY point cloud files.
It supports both ASCII and binary PLY formats and provides point statistics,
bounding box information, and precise point-to-point measurements.`,
	Version: version.GetFullVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
