package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

func parseDateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q (want YYYY-MM-DD)", name, value)
	}
	return t, nil
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Export a catalog of cloud recordings to CSV",
	Long: `Lists the account's cloud recordings and writes them to a CSV
catalog. The Meeting UUID column is the reliable handle for downloads;
share links can rot, UUIDs do not.`,
	Example: `  # Catalog the last 30 days
  zoomscribe list

  # Catalog a full year into a custom file
  zoomscribe list --from 2020-01-01 --to 2020-12-31 --output recordings_2020.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateZoomCredentials(); err != nil {
			return err
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
		max, _ := cmd.Flags().GetInt("max")
		output, _ := cmd.Flags().GetString("output")

		app := internal.NewApp(config)
		records, err := app.Zoom().ListRecordings(cmd.Context(), from, to, max)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No recordings found in the specified date range")
			return nil
		}

		var totalMinutes int
		var totalBytes int64
		for _, rec := range records {
			totalMinutes += rec.Duration
			for _, file := range rec.Files {
				if file.IsVideo() {
					totalBytes += file.FileSize
				}
			}
		}
		fmt.Printf("Found %d recordings (%.1f hours, %.1f GB)\n",
			len(records), float64(totalMinutes)/60, float64(totalBytes)/(1<<30))

		if err := internal.WriteCatalogCSV(records, output); err != nil {
			return err
		}
		fmt.Printf("Exported catalog to: %s\n", output)
		return nil
	},
}

func init() {
	listCmd.Flags().String("from", "", "Start date YYYY-MM-DD (default: 30 days ago)")
	listCmd.Flags().String("to", "", "End date YYYY-MM-DD (default: today)")
	listCmd.Flags().Int("max", 1000, "Maximum recordings to fetch")
	listCmd.Flags().String("output", "zoom_recordings.csv", "Output CSV file")
	rootCmd.AddCommand(listCmd)
}
