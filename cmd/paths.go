package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  zoomscribe paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Recordings directory: %s\n", config.RecordingsDir)
		fmt.Printf("Transcripts directory: %s\n", config.TranscriptsDir)
		fmt.Printf("Segments directory: %s\n", config.SegmentsDir)
		fmt.Printf("Structured exports directory: %s\n", config.StructuredDir)
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
