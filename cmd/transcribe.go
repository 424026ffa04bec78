package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ebrivera/cordoba-hosue/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [video file]",
	Short: "Transcribe a downloaded recording with Whisper",
	Long: `Extracts the audio track with ffmpeg and transcribes it using the
OpenAI Whisper API. The timed transcript is cached in the transcripts
directory, so repeated runs on the same file are free.`,
	Example: `  # Transcribe a downloaded recording
  zoomscribe transcribe recordings/friday_class.mp4

  # Save the readable transcript to a file
  zoomscribe transcribe recordings/friday_class.mp4 -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIAPIKey(config.OpenAIAPIKey); err != nil {
			return err
		}
		if !internal.FileExists(args[0]) {
			return fmt.Errorf("video file not found: %s", args[0])
		}

		app := internal.NewApp(config)
		transcript, err := app.TranscribeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		// Handle output flag
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(transcript.Readable()), 0644)
		}

		fmt.Println(transcript.Readable())
		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}
