package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [csv file]",
	Short: "Download every recording listed in a CSV file",
	Long: `Batch downloads recordings from a manually maintained CSV.

The sheet may have a header row (Name of the Meeting, Email, Meeting ID,
Date, Time, Meeting Type, Teacher, Share Link) or none, in which case
columns are read by position. Share links with pasted passcodes are
cleaned up automatically.

Failures are recorded per entry and the batch continues; nothing is
retried. Entries whose output file already exists are skipped unless
--no-skip is given.`,
	Example: `  # Download everything from the sheet
  zoomscribe batch recordings.csv

  # Into a specific directory, re-downloading existing files
  zoomscribe batch recordings.csv --output-dir ./videos --no-skip`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateZoomCredentials(); err != nil {
			return err
		}
		if !internal.FileExists(args[0]) {
			return fmt.Errorf("CSV file not found: %s", args[0])
		}

		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = config.RecordingsDir
		}
		noSkip, _ := cmd.Flags().GetBool("no-skip")

		app := internal.NewApp(config)
		summary, err := app.DownloadBatch(cmd.Context(), args[0], outputDir, !noSkip)
		if err != nil {
			return err
		}

		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d downloads failed", summary.Failed, len(summary.Results))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("output-dir", "", "Output directory (default: recordings data dir)")
	batchCmd.Flags().Bool("no-skip", false, "Re-download even if the file already exists")
	rootCmd.AddCommand(batchCmd)
}
