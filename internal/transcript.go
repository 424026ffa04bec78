package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TranscriptSegment is one timed span of speech.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the full result of transcribing one recording.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

// SaveTranscript writes a transcript as indented JSON.
func SaveTranscript(t *Transcript, path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// LoadTranscript reads a transcript JSON file.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	return &t, nil
}

// Readable formats the transcript as text with a [MM:SS] timestamp per
// segment.
func (t *Transcript) Readable() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Transcript - Duration: %.1fs\n", t.Duration))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for _, seg := range t.Segments {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", FormatTimestamp(seg.Start), strings.TrimSpace(seg.Text)))
	}
	return sb.String()
}

// FormatTimestamp renders seconds as MM:SS.
func FormatTimestamp(seconds float64) string {
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// ParseTimestamp reads MM:SS or HH:MM:SS into seconds. Malformed input
// yields zero, matching how loosely the model's timestamps are trusted.
func ParseTimestamp(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var nums []int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 2:
		return float64(nums[0]*60 + nums[1])
	case 3:
		return float64(nums[0]*3600 + nums[1]*60 + nums[2])
	default:
		return 0
	}
}
