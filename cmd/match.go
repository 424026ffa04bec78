package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [csv file]",
	Short: "Match a manual CSV against API recordings to recover UUIDs",
	Long: `Takes a manually maintained sheet of recordings (with share links)
and matches each entry against the account's API listing, writing a new
CSV with the meeting UUID filled in. Matched rows can then be downloaded
reliably with 'zoomscribe download <uuid>'.`,
	Example: `  # Match a sheet against recordings from 2020-2021
  zoomscribe match manual_recordings.csv --from 2020-01-01 --to 2021-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateZoomCredentials(); err != nil {
			return err
		}
		if !internal.FileExists(args[0]) {
			return fmt.Errorf("CSV file not found: %s", args[0])
		}

		now := time.Now()
		from, err := parseDateFlag(cmd, "from", now.AddDate(0, 0, -30))
		if err != nil {
			return err
		}
		to, err := parseDateFlag(cmd, "to", now)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		entries, err := internal.ReadBatchCSV(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Read %d manually cataloged recordings\n", len(entries))

		app := internal.NewApp(config)
		records, err := app.Zoom().ListRecordings(cmd.Context(), from, to, 1000)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d recordings in the API\n", len(records))

		matched, unmatched := internal.MatchCatalog(entries, records)
		fmt.Printf("Matched: %d, unmatched: %d\n", len(matched), len(unmatched))

		if err := internal.SaveMatchCSV(matched, unmatched, output); err != nil {
			return err
		}
		fmt.Printf("Results exported to: %s\n", output)
		return nil
	},
}

func init() {
	matchCmd.Flags().String("from", "", "Start date YYYY-MM-DD (default: 30 days ago)")
	matchCmd.Flags().String("to", "", "End date YYYY-MM-DD (default: today)")
	matchCmd.Flags().String("output", "matched_recordings.csv", "Output CSV file")
	rootCmd.AddCommand(matchCmd)
}
