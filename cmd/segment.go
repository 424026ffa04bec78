package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// segmentCmd represents the segment command
var segmentCmd = &cobra.Command{
	Use:   "segment [transcript or video file]",
	Short: "Split a transcript into class sections",
	Long: `Runs the section segmenter over a transcript. Given a video file it
transcribes first (using the cache when available). The segmentation is
saved as JSON and the structured CSV/JSON exports are updated.`,
	Example: `  # Segment an existing transcript
  zoomscribe segment transcripts/friday_class.json

  # Transcribe and segment a video in one go
  zoomscribe segment recordings/friday_class.mp4

  # Save the section report instead of printing it
  zoomscribe segment transcripts/friday_class.json -o sections.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}
		if !internal.FileExists(args[0]) {
			return fmt.Errorf("input file not found: %s", args[0])
		}

		app := internal.NewApp(config)
		if err := internal.HandlePromptFlag(cmd, app); err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

		var transcript *internal.Transcript
		var err error
		if filepath.Ext(args[0]) == ".json" {
			transcript, err = internal.LoadTranscript(args[0])
		} else {
			transcript, err = app.TranscribeVideo(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}

		segmentation, err := app.SegmentTranscript(cmd.Context(), transcript, name)
		if err != nil {
			return err
		}

		meta := internal.VideoMeta{Name: name, DurationMinutes: transcript.Duration / 60}
		if err := internal.ExportStructured(segmentation, meta, config.StructuredDir); err != nil {
			return err
		}

		report := segmentation.Markdown()
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(report), 0644)
		}

		rendered, err := internal.RenderMarkdown(report)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	internal.AddOpenAIFlags(segmentCmd)
	segmentCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(segmentCmd)
}
