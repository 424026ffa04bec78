package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// appName names the XDG directories and the env prefix.
const appName = "zoomscribe"

// Config holds application settings
type Config struct {
	// User configurable settings
	SegmentModel   string
	RecordingsDir  string
	TranscriptsDir string
	SegmentsDir    string
	StructuredDir  string
	SegmentTimeout time.Duration
	WhisperTimeout time.Duration
	BatchPause     time.Duration
	Verbose        bool
	Quiet          bool
	OpenAIAPIKey   string
	Prompt         string

	// Zoom Server-to-Server OAuth credentials, environment only
	ZoomAccountID    string
	ZoomClientID     string
	ZoomClientSecret string
	ZoomUserID       string

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string

	Logger zerolog.Logger
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	// Check if file already exists
	if FileExists(filePath) {
		return nil
	}

	// Make sure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Read the embedded default file
	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	// Write the default file to the specified directory
	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Printf("Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt checks if a prompt.txt file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "segmentation prompt template")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, appName)
	dataDir := filepath.Join(xdg.DataHome, appName)
	cacheDir := filepath.Join(xdg.CacheHome, appName)
	tempDir := filepath.Join(cacheDir, "temp_chunks")

	// Initialize viper
	v := viper.New()

	// Set default values for configurable settings
	v.SetDefault("segment_model", "gpt-4o-mini")
	v.SetDefault("recordings_dir", filepath.Join(dataDir, "recordings"))
	v.SetDefault("transcripts_dir", filepath.Join(dataDir, "transcripts"))
	v.SetDefault("segments_dir", filepath.Join(dataDir, "segments"))
	v.SetDefault("structured_dir", filepath.Join(dataDir, "structured"))
	v.SetDefault("segment_timeout", 2*time.Minute)
	v.SetDefault("whisper_timeout", 10*time.Minute)
	v.SetDefault("batch_pause", 2*time.Second)
	v.SetDefault("verbose", false)
	v.SetDefault("prompt", "") // if empty will use default prompt template

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("ZOOMSCRIBE")
	v.AutomaticEnv()

	// Credentials are bound to their conventional env var names directly.
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("zoom_account_id", "ZOOM_ACCOUNT_ID")
	_ = v.BindEnv("zoom_client_id", "ZOOM_CLIENT_ID")
	_ = v.BindEnv("zoom_client_secret", "ZOOM_CLIENT_SECRET")
	_ = v.BindEnv("zoom_user_id", "ZOOM_USER_ID")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	// Create config struct from viper
	config := &Config{
		// User configurable settings
		SegmentModel:   v.GetString("segment_model"),
		RecordingsDir:  v.GetString("recordings_dir"),
		TranscriptsDir: v.GetString("transcripts_dir"),
		SegmentsDir:    v.GetString("segments_dir"),
		StructuredDir:  v.GetString("structured_dir"),
		SegmentTimeout: v.GetDuration("segment_timeout"),
		WhisperTimeout: v.GetDuration("whisper_timeout"),
		BatchPause:     v.GetDuration("batch_pause"),
		Verbose:        v.GetBool("verbose"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		Prompt:         v.GetString("prompt"),

		ZoomAccountID:    v.GetString("zoom_account_id"),
		ZoomClientID:     v.GetString("zoom_client_id"),
		ZoomClientSecret: v.GetString("zoom_client_secret"),
		ZoomUserID:       v.GetString("zoom_user_id"),

		// Fixed XDG paths
		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	config.Logger = NewLogger(config.Verbose)

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// NewLogger builds the console logger. Debug level only with --verbose.
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// ValidateZoomCredentials checks that the Zoom Server-to-Server OAuth
// credentials are configured.
func (c *Config) ValidateZoomCredentials() error {
	missing := []string{}
	if c.ZoomAccountID == "" {
		missing = append(missing, "ZOOM_ACCOUNT_ID")
	}
	if c.ZoomClientID == "" {
		missing = append(missing, "ZOOM_CLIENT_ID")
	}
	if c.ZoomClientSecret == "" {
		missing = append(missing, "ZOOM_CLIENT_SECRET")
	}
	if c.ZoomUserID == "" {
		missing = append(missing, "ZOOM_USER_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}
