package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SectionTypes are the five fixed class sections the segmenter assigns. They
// may appear in any order in a recording and some may be missing entirely.
var SectionTypes = []string{
	"Salam Time/Ice Breaker",
	"Discussion Topic",
	"Quran Recitation",
	"Arabic",
	"Worship",
}

// Section is one identified span of a class recording.
type Section struct {
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Summary   string `json:"summary"`
	Text      string `json:"text,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}

// Segmentation is the model's analysis of one transcript.
type Segmentation struct {
	Sections       []Section `json:"sections"`
	OverallSummary string    `json:"overall_summary,omitempty"`
	DetectedOrder  []string  `json:"detected_order,omitempty"`
	// RawResponse holds the model output when it could not be parsed as JSON.
	RawResponse string `json:"raw_response,omitempty"`
}

// Segmenter turns transcripts into section breakdowns via a chat-model call.
type Segmenter struct {
	ai            *AI
	promptManager *PromptManager
	verbose       bool
}

// NewSegmenter creates a segmenter.
func NewSegmenter(ai *AI, promptManager *PromptManager, verbose bool) *Segmenter {
	return &Segmenter{ai: ai, promptManager: promptManager, verbose: verbose}
}

// Segment asks the model to partition the transcript into the fixed sections,
// then recovers each section's full text from the timed transcript segments.
func (s *Segmenter) Segment(ctx context.Context, transcript *Transcript) (*Segmentation, error) {
	prompt, err := s.promptManager.CreatePrompt(transcript)
	if err != nil {
		return nil, fmt.Errorf("creating segmentation prompt: %w", err)
	}

	response, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("segmenting transcript: %w", err)
	}

	segmentation := parseSegmentation(response)
	ExtractSectionTexts(segmentation, transcript)

	if s.verbose {
		for _, section := range segmentation.Sections {
			fmt.Printf("   %s: %d words\n", section.Type, section.WordCount)
		}
	}
	return segmentation, nil
}

// parseSegmentation decodes the model's JSON, tolerating markdown code
// fences. An unparseable response is preserved raw rather than dropped.
func parseSegmentation(response string) *Segmentation {
	payload := extractJSONBlock(response)

	var segmentation Segmentation
	if err := json.Unmarshal([]byte(payload), &segmentation); err != nil {
		return &Segmentation{RawResponse: response}
	}
	return &segmentation
}

// extractJSONBlock strips a ```json ... ``` or ``` ... ``` fence if present.
func extractJSONBlock(s string) string {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(s, fence)
		if start < 0 {
			continue
		}
		start += len(fence)
		end := strings.Index(s[start:], "```")
		if end < 0 {
			break
		}
		return strings.TrimSpace(s[start : start+end])
	}
	return strings.TrimSpace(s)
}

// ExtractSectionTexts fills each section's Text and WordCount from the
// transcript segments that overlap the section's time range. Partial overlap
// counts; a segment straddling a boundary lands in both sections.
func ExtractSectionTexts(segmentation *Segmentation, transcript *Transcript) {
	for i := range segmentation.Sections {
		section := &segmentation.Sections[i]
		start := ParseTimestamp(section.StartTime)
		end := ParseTimestamp(section.EndTime)

		var texts []string
		for _, seg := range transcript.Segments {
			if seg.Start < end && seg.End > start {
				texts = append(texts, strings.TrimSpace(seg.Text))
			}
		}

		section.Text = strings.Join(texts, " ")
		section.WordCount = len(strings.Fields(section.Text))
	}
}

// SaveSegmentation writes a segmentation as indented JSON.
func SaveSegmentation(segmentation *Segmentation, path string) error {
	data, err := json.MarshalIndent(segmentation, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling segmentation: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("saving segmentation: %w", err)
	}
	return nil
}

// Markdown renders the segmentation as a markdown report.
func (s *Segmentation) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Video Segmentation\n\n")

	if s.OverallSummary != "" {
		sb.WriteString(fmt.Sprintf("**Summary:** %s\n\n", s.OverallSummary))
	}
	if len(s.DetectedOrder) > 0 {
		sb.WriteString(fmt.Sprintf("**Section order:** %s\n\n", strings.Join(s.DetectedOrder, ", ")))
	}

	for i, section := range s.Sections {
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, section.Type))
		sb.WriteString(fmt.Sprintf("- Time: %s - %s\n", section.StartTime, section.EndTime))
		if section.WordCount > 0 {
			sb.WriteString(fmt.Sprintf("- Words: %d\n", section.WordCount))
		}
		sb.WriteString(fmt.Sprintf("\n%s\n\n", section.Summary))
	}

	if s.RawResponse != "" {
		sb.WriteString("## Raw response\n\n")
		sb.WriteString(s.RawResponse)
		sb.WriteString("\n")
	}
	return sb.String()
}
