package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [share URL or meeting UUID]",
	Short: "Download a recording without processing it",
	Example: `  # Download by share link
  zoomscribe download "https://zoom.us/rec/share/abc123"

  # Download by meeting UUID (from 'zoomscribe list' output)
  zoomscribe download "Mkq3Tj5SQOafd2w/ZwZnbA=="

  # Custom filename and directory
  zoomscribe download "https://zoom.us/rec/share/abc123" --filename friday_class --output-dir ./videos`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateZoomCredentials(); err != nil {
			return err
		}

		app := internal.NewApp(config)
		filename, _ := cmd.Flags().GetString("filename")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = config.RecordingsDir
		}

		arg := args[0]
		var dest string
		var err error
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			dest, err = app.DownloadFromShareLink(cmd.Context(), arg, filename, outputDir)
		} else {
			dest, err = app.DownloadByUUID(cmd.Context(), arg, filename, outputDir)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Downloaded: %s\n", dest)
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("filename", "", "Output filename without extension (default: derived from topic)")
	downloadCmd.Flags().String("output-dir", "", "Output directory (default: recordings data dir)")
	rootCmd.AddCommand(downloadCmd)
}
