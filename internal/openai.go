package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file *os.File) (*Transcript, error)
	CreateChatCompletion(ctx context.Context, model, prompt string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// verboseTranscription mirrors the verbose_json response shape, which carries
// the per-segment timestamps the segmenter needs.
type verboseTranscription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// CreateTranscription transcribes one audio file with segment timestamps.
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file *os.File) (*Transcript, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModelWhisper1,
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	})
	if err != nil {
		return nil, err
	}

	var verbose verboseTranscription
	if err := json.Unmarshal([]byte(resp.RawJSON()), &verbose); err != nil {
		// Fall back to plain text if the verbose payload cannot be decoded.
		return &Transcript{Text: resp.Text}, nil
	}

	t := &Transcript{
		Text:     verbose.Text,
		Language: verbose.Language,
		Duration: verbose.Duration,
	}
	for _, seg := range verbose.Segments {
		t.Segments = append(t.Segments, TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return t, nil
}

// CreateChatCompletion implements the chat completion method
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	// Map model string to openai model constant
	var oaiModel openai.ChatModel
	switch model {
	case "gpt-4o":
		oaiModel = openai.ChatModelGPT4o
	case "gpt-4o-mini":
		oaiModel = openai.ChatModelGPT4oMini
	case "o4-mini":
		oaiModel = openai.ChatModelO4Mini
	case "gpt-4.1-nano":
		oaiModel = openai.ChatModelGPT4_1Nano
	default:
		return "", fmt.Errorf("unsupported model: %s", model)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: oaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// AI handles OpenAI API interactions for transcription and segmentation
type AI struct {
	client         OpenAIClientInterface
	audio          *Audio
	model          string
	whisperLimit   int64
	segmentTimeout time.Duration
	whisperTimeout time.Duration
	verbose        bool
	apiKey         string
	clientOnce     sync.Once
}

// NewAI creates a new AI processor
func NewAI(client OpenAIClientInterface, audio *Audio, model string, whisperLimit int64, segmentTimeout, whisperTimeout time.Duration, verbose bool) *AI {
	return &AI{
		client:         client,
		audio:          audio,
		model:          model,
		whisperLimit:   whisperLimit,
		segmentTimeout: segmentTimeout,
		whisperTimeout: whisperTimeout,
		verbose:        verbose,
	}
}

// NewAIWithKey creates a new AI processor with lazy client initialization
func NewAIWithKey(apiKey string, audio *Audio, model string, whisperLimit int64, segmentTimeout, whisperTimeout time.Duration, verbose bool) *AI {
	return &AI{
		audio:          audio,
		model:          model,
		whisperLimit:   whisperLimit,
		segmentTimeout: segmentTimeout,
		whisperTimeout: whisperTimeout,
		verbose:        verbose,
		apiKey:         apiKey,
	}
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	if ai.client != nil {
		return nil
	}

	if ai.apiKey == "" {
		return ValidateOpenAIAPIKey("")
	}

	ai.clientOnce.Do(func() {
		ai.client = NewOpenAIClient(ai.apiKey)
	})

	return nil
}

// Transcribe extracts the audio track from a recording and transcribes it
// with the Whisper API, splitting into chunks when the audio exceeds the API
// size limit.
func (ai *AI) Transcribe(ctx context.Context, videoFile string) (*Transcript, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}

	if ai.verbose {
		fmt.Printf("Transcribing recording: %s\n", videoFile)
	}

	if ai.whisperTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.whisperTimeout)
		defer cancel()
	}

	audioFile, err := ai.audio.Extract(ctx, videoFile)
	if err != nil {
		return nil, fmt.Errorf("extracting audio: %w", err)
	}
	defer cleanupFiles(audioFile)

	info, err := os.Stat(audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio file info: %w", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(ai.whisperLimit)))

	chunks := []string{audioFile}
	if numChunks > 1 {
		chunks, err = ai.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return nil, fmt.Errorf("splitting audio: %w", err)
		}
		defer cleanupFiles(chunks...)
	}

	transcript, err := ai.transcribeChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}
	return transcript, nil
}

// transcribeChunks transcribes audio chunks sequentially, offsetting each
// chunk's timestamps by the running duration so the combined segments stay on
// one timeline.
// NOTE: concurrent chunk uploads returned broken transcripts for one chunk;
// sequential works, so keep it sequential.
func (ai *AI) transcribeChunks(ctx context.Context, chunks []string) (*Transcript, error) {
	numChunks := len(chunks)

	if ai.verbose {
		fmt.Printf("Transcribing chunks (%d)\n", numChunks)
	}

	combined := &Transcript{}
	var texts []string
	var offset float64

	for i, chunkPath := range chunks {
		file, err := os.Open(chunkPath)
		if err != nil {
			return nil, fmt.Errorf("opening chunk %s: %w", chunkPath, err)
		}

		part, err := ai.client.CreateTranscription(ctx, file)
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", chunkPath, closeErr)
		}
		if err != nil {
			return nil, fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		for _, seg := range part.Segments {
			combined.Segments = append(combined.Segments, TranscriptSegment{
				Start: seg.Start + offset,
				End:   seg.End + offset,
				Text:  seg.Text,
			})
		}
		if part.Duration > 0 {
			offset += part.Duration
		} else if n := len(part.Segments); n > 0 {
			offset += part.Segments[n-1].End
		}

		texts = append(texts, part.Text)
		combined.Language = part.Language

		if ai.verbose {
			fmt.Printf("Transcribed chunk %d/%d\n", i+1, numChunks)
		}
	}

	combined.Text = strings.Join(texts, " ")
	if n := len(combined.Segments); n > 0 {
		combined.Duration = combined.Segments[n-1].End
	}
	return combined, nil
}

// Complete runs a single-prompt chat completion, bounded by the configured
// segmentation timeout.
func (ai *AI) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, ai.segmentTimeout)
	defer cancel()

	content, err := ai.client.CreateChatCompletion(ctx, ai.model, prompt)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	return content, nil
}
