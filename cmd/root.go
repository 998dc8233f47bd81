/*
Copyright © 2024 Dean
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "govector",
	Short: "Convert raster images to vector formats",
	Long: `govector converts raster images (JPG, PNG, HEIC) into vector
formats (SVG, EPS, PDF) suitable for professional printing. The serve
command exposes the conversion pipeline as an HTTP API with per-job
progress tracking; convert runs the same pipeline once for a local file.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
