package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// manualCmd represents the manual command
var manualCmd = &cobra.Command{
	Use:   "manual [section type]",
	Short: "Combine one section type across all processed videos",
	Long: `Builds a markdown document with the full text of a single section
type from every structured export, e.g. all Quran Recitation sections
across the whole class archive.

Section types: ` + strings.Join(internal.SectionTypes, ", "),
	Example: `  # All discussion topics in one document
  zoomscribe manual "Discussion Topic" -o discussion_manual.md

  # Print the Arabic sections from a custom export directory
  zoomscribe manual Arabic --input-dir ./structured_output`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionType := args[0]
		valid := false
		for _, t := range internal.SectionTypes {
			if strings.EqualFold(t, sectionType) {
				sectionType = t
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown section type %q (valid: %s)", args[0], strings.Join(internal.SectionTypes, ", "))
		}

		inputDir, _ := cmd.Flags().GetString("input-dir")
		if inputDir == "" {
			inputDir = config.StructuredDir
		}

		videos, err := internal.LoadStructuredDir(inputDir)
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			return fmt.Errorf("no structured exports found in %s", inputDir)
		}

		manual := internal.BuildSectionManual(videos, sectionType)
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(manual), 0644); err != nil {
				return fmt.Errorf("saving manual: %w", err)
			}
			fmt.Printf("Created manual: %s\n", outputFile)
			return nil
		}

		fmt.Println(manual)
		return nil
	},
}

func init() {
	manualCmd.Flags().String("input-dir", "", "Directory with structured JSON exports (default: structured data dir)")
	manualCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(manualCmd)
}
