package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// App holds the application state and dependencies
type App struct {
	zoom          *ZoomClient
	locator       *Locator
	scraper       *Scraper
	transfer      *Transfer
	ai            *AI
	segmenter     *Segmenter
	promptManager *PromptManager
	config        *Config
	ui            UIManager
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	cmdRunner := &DefaultCommandRunner{}

	promptManager := NewPromptManager(config.ConfigDir, config.Prompt)
	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ai := NewAIWithKey(config.OpenAIAPIKey, audio, config.SegmentModel, WhisperLimit, config.SegmentTimeout, config.WhisperTimeout, config.Verbose)
	ui := NewUIManager(config.Verbose, config.Quiet)

	zoom := NewZoomClient(config.ZoomAccountID, config.ZoomClientID, config.ZoomClientSecret, config.ZoomUserID, config.Logger)

	app := &App{
		zoom:          zoom,
		locator:       NewLocator(zoom, config.Logger),
		scraper:       NewScraper(config.Logger),
		transfer:      NewTransfer(ui, config.Logger),
		ai:            ai,
		segmenter:     NewSegmenter(ai, promptManager, config.Verbose),
		promptManager: promptManager,
		config:        config,
		ui:            ui,
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithZoom sets a custom Zoom API client
func WithZoom(zoom *ZoomClient) AppOption {
	return func(a *App) {
		a.zoom = zoom
		a.locator = NewLocator(zoom, a.config.Logger)
	}
}

// WithScraper sets a custom share-page scraper
func WithScraper(scraper *Scraper) AppOption {
	return func(a *App) {
		a.scraper = scraper
	}
}

// WithTransfer sets a custom file transfer
func WithTransfer(transfer *Transfer) AppOption {
	return func(a *App) {
		a.transfer = transfer
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
		a.segmenter = NewSegmenter(ai, a.promptManager, a.config.Verbose)
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.promptManager = pm
	app.segmenter = NewSegmenter(app.ai, pm, app.config.Verbose)
}

// Zoom exposes the API client for listing and matching commands.
func (app *App) Zoom() *ZoomClient { return app.zoom }

// DownloadFromShareLink resolves a share URL to a recording and downloads it.
// The account's own recordings are matched through the API; links owned by
// other accounts fall back to scraping the share page for a direct URL.
// Returns the path of the downloaded file.
func (app *App) DownloadFromShareLink(ctx context.Context, shareURL, customFilename, outputDir string) (string, error) {
	if err := EnsureDirs(outputDir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	link, err := ResolveShareLink(shareURL)
	if err != nil {
		return "", err
	}
	app.ui.Verbose("Recording ID: %s\n", link.RecordingID)

	target, err := app.locator.Locate(ctx, link)
	if err == nil {
		app.ui.Printf("Matched recording %q via %s\n", target.Topic, target.MatchedBy)
		return app.downloadTarget(ctx, target, customFilename, outputDir)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	// Not in this account's listing. Try the share page itself.
	app.ui.Printf("Recording not found via API, trying direct fetch...\n")
	target, err = app.scraper.FetchDirect(ctx, link.URL)
	if err != nil {
		return "", err
	}
	if customFilename == "" {
		customFilename = "recording_" + SafeFilename(link.RecordingID)
	}

	// Reuse the scraper's session so cookies from the share page carry over.
	dest := filepath.Join(outputDir, customFilename+strings.ToLower("."+target.FileType))
	if err := app.transfer.WithClient(app.scraper.Client()).Download(ctx, target.DownloadURL, dest, ""); err != nil {
		return "", err
	}
	return dest, nil
}

// DownloadByUUID downloads a recording addressed by its meeting UUID. This is
// the reliable path when the UUID is known, e.g. from a catalog export.
func (app *App) DownloadByUUID(ctx context.Context, uuid, customFilename, outputDir string) (string, error) {
	if err := EnsureDirs(outputDir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	record, err := app.zoom.RecordingByUUID(ctx, uuid)
	if err != nil {
		return "", err
	}
	target, err := TargetFromRecord(record)
	if err != nil {
		return "", err
	}
	return app.downloadTarget(ctx, target, customFilename, outputDir)
}

// downloadTarget fetches an API-matched recording. Media downloads carry the
// OAuth token as a query parameter.
func (app *App) downloadTarget(ctx context.Context, target *ResolvedTarget, customFilename, outputDir string) (string, error) {
	filename := target.SuggestedFilename
	if customFilename != "" {
		ext := filepath.Ext(target.SuggestedFilename)
		filename = customFilename + ext
	}
	dest := filepath.Join(outputDir, filename)

	token, err := app.zoom.Token(ctx)
	if err != nil {
		return "", err
	}

	if err := app.transfer.Download(ctx, target.DownloadURL, dest, token); err != nil {
		return "", err
	}
	return dest, nil
}

// TranscribeVideo extracts audio from a downloaded recording, transcribes it
// with Whisper, and saves both the timed JSON transcript and a readable text
// version next to the other transcripts.
func (app *App) TranscribeVideo(ctx context.Context, videoFile string) (*Transcript, error) {
	if err := EnsureDirs(app.config.TranscriptsDir, app.config.TempDir); err != nil {
		return nil, fmt.Errorf("creating transcripts directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(videoFile), filepath.Ext(videoFile))
	jsonPath := filepath.Join(app.config.TranscriptsDir, stem+".json")

	// Reuse an existing transcript when the video was processed before.
	if FileExists(jsonPath) {
		app.ui.Verbose("Using cached transcript %s\n", jsonPath)
		return LoadTranscript(jsonPath)
	}

	transcript, err := app.ai.Transcribe(ctx, videoFile)
	if err != nil {
		return nil, err
	}

	if err := SaveTranscript(transcript, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	textPath := filepath.Join(app.config.TranscriptsDir, stem+".txt")
	if err := os.WriteFile(textPath, []byte(transcript.Readable()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: saving readable transcript: %v\n", err)
	}
	return transcript, nil
}

// SegmentTranscript runs the section segmenter over a transcript and saves
// the result.
func (app *App) SegmentTranscript(ctx context.Context, transcript *Transcript, name string) (*Segmentation, error) {
	if err := EnsureDirs(app.config.SegmentsDir); err != nil {
		return nil, fmt.Errorf("creating segments directory: %w", err)
	}

	segmentation, err := app.segmenter.Segment(ctx, transcript)
	if err != nil {
		return nil, err
	}

	segPath := filepath.Join(app.config.SegmentsDir, SafeFilename(name)+"_segments.json")
	if err := SaveSegmentation(segmentation, segPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return segmentation, nil
}

// ProcessRecording runs the post-download pipeline for one video file:
// transcribe, segment, and export the structured data.
func (app *App) ProcessRecording(ctx context.Context, videoFile string, meta VideoMeta) (*Segmentation, error) {
	transcript, err := app.TranscribeVideo(ctx, videoFile)
	if err != nil {
		return nil, fmt.Errorf("transcribing %s: %w", videoFile, err)
	}
	if meta.DurationMinutes == 0 {
		meta.DurationMinutes = transcript.Duration / 60
	}

	segmentation, err := app.SegmentTranscript(ctx, transcript, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("segmenting %s: %w", meta.Name, err)
	}

	if err := ExportStructured(segmentation, meta, app.config.StructuredDir); err != nil {
		return nil, err
	}
	return segmentation, nil
}

// ProcessShareLink runs the complete workflow for one share URL: download,
// transcribe, segment, export.
func (app *App) ProcessShareLink(ctx context.Context, shareURL string) (*Segmentation, error) {
	videoFile, err := app.DownloadFromShareLink(ctx, shareURL, "", app.config.RecordingsDir)
	if err != nil {
		return nil, err
	}
	app.ui.Printf("Downloaded %s\n", videoFile)

	name := strings.TrimSuffix(filepath.Base(videoFile), filepath.Ext(videoFile))
	return app.ProcessRecording(ctx, videoFile, VideoMeta{Name: name})
}

// Batch item outcomes.
const (
	BatchSuccess = "success"
	BatchFailed  = "failed"
	BatchSkipped = "skipped"
)

// BatchItemResult records the outcome for one CSV entry.
type BatchItemResult struct {
	Entry      BatchEntry
	Status     string
	OutputPath string
	Err        error
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Results []BatchItemResult
	Success int
	Failed  int
	Skipped int
}

// batchFilename builds the per-entry output name from the sheet's date and
// meeting name columns.
func batchFilename(entry BatchEntry) string {
	safeDate := strings.ReplaceAll(strings.ReplaceAll(entry.DateText, ",", ""), " ", "_")
	return safeDate + "_" + SafeFilename(entry.Name)
}

// DownloadBatch downloads every entry of a manual CSV in order. A failing
// entry is recorded and the batch moves on; there are no retries. Entries
// whose output file already exists are skipped unless skipExisting is off.
func (app *App) DownloadBatch(ctx context.Context, csvPath, outputDir string, skipExisting bool) (*BatchSummary, error) {
	entries, err := ReadBatchCSV(csvPath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no recordings found in %s", csvPath)
	}

	app.ui.Printf("Found %d recordings to download\n", len(entries))
	summary := &BatchSummary{Results: make([]BatchItemResult, 0, len(entries))}

	for i, entry := range entries {
		app.ui.Printf("\n[%d/%d] %s (%s, %s)\n", i+1, len(entries), entry.Name, entry.DateText, entry.Teacher)

		result := BatchItemResult{Entry: entry}
		filename := batchFilename(entry)
		existing := filepath.Join(outputDir, filename+".mp4")

		switch {
		case skipExisting && FileExists(existing):
			app.ui.Printf("Skipping, file already exists: %s\n", existing)
			result.Status = BatchSkipped
			result.OutputPath = existing
			summary.Skipped++
		default:
			dest, err := app.DownloadFromShareLink(ctx, entry.ShareLink, filename, outputDir)
			if err != nil {
				app.ui.Printf("Failed: %v\n", err)
				result.Status = BatchFailed
				result.Err = err
				summary.Failed++
			} else {
				result.Status = BatchSuccess
				result.OutputPath = dest
				summary.Success++
			}
		}
		summary.Results = append(summary.Results, result)

		// Brief pause between downloads.
		if result.Status != BatchSkipped && i < len(entries)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(app.config.BatchPause):
			}
		}
	}

	app.ui.Printf("\nDownload summary: %d successful, %d failed, %d skipped (%d total)\n",
		summary.Success, summary.Failed, summary.Skipped, len(entries))
	return summary, nil
}
