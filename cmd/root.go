package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ebrivera/cordoba-hosue/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zoomscribe [share URL]",
	Short: "Download, transcribe, and segment Zoom class recordings",
	Long: `Zoomscribe turns Zoom cloud recordings into structured class data.

Given a share link it finds the recording through the Zoom API (falling
back to the share page when the link belongs to another account),
downloads the video, transcribes it with Whisper, splits the transcript
into class sections with an OpenAI model, and exports the result as
CSV and JSON.`,
	Example: `  # Run the full pipeline for one share link
  zoomscribe "https://zoom.us/rec/share/abc123"

  # Use a specific OpenAI model for segmentation
  zoomscribe "https://zoom.us/rec/share/abc123" --model gpt-4o

  # Use a custom segmentation prompt
  zoomscribe "https://zoom.us/rec/share/abc123" --prompt my_prompt.txt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return internal.HandleVerboseFlag(cmd, config)
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateZoomCredentials(); err != nil {
			return err
		}
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}

		app := internal.NewApp(config)
		if err := internal.HandlePromptFlag(cmd, app); err != nil {
			return err
		}

		segmentation, err := app.ProcessShareLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		rendered, err := internal.RenderMarkdown(segmentation.Markdown())
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize configuration with Viper
	config = internal.InitConfig()

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Ensure default prompt exists in XDG config directory
	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Handle shutdown signal in a separate goroutine
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt signal. Cleaning up and shutting down...")

		// Cancel the main context to signal all operations to stop
		cancel()

		// Create a context with timeout for cleanup operations
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		// Run cleanup with timeout context
		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		// Wait for either cleanup to complete or timeout
		select {
		case <-cleanupDone:
			// Cleanup completed successfully
		case <-cleanupCtx.Done():
			// Timeout occurred
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		// Exit the program
		os.Exit(0)
	}()

	// Set context on root command
	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddOpenAIFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/zoomscribe/config.toml)")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
