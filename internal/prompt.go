package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptData for template injection
type PromptData struct {
	// Transcript is the timestamped transcript text, one [MM:SS] line per
	// segment.
	Transcript string
}

// PromptManager handles loading and processing the segmentation prompt
// template.
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	// Configure prompt based on config setting
	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// CreatePrompt builds the segmentation prompt from a transcript.
func (pm *PromptManager) CreatePrompt(transcript *Transcript) (string, error) {
	var tmplContent string

	if pm.promptString != "" {
		// Use custom prompt string
		tmplContent = pm.promptString
	} else {
		// Use prompt file (custom or default from config directory)
		promptFile := pm.promptFile
		if promptFile == "" {
			promptFile = filepath.Join(pm.configDir, "prompt.txt")
		}

		content, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("reading prompt template: %w", err)
		}
		tmplContent = string(content)
	}

	return buildPromptFromTemplate(tmplContent, transcript)
}

// buildPromptFromTemplate renders the template with the timestamped
// transcript.
func buildPromptFromTemplate(templateContent string, transcript *Transcript) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	data := PromptData{
		Transcript: TimestampedText(transcript),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// TimestampedText renders a transcript with one [MM:SS]-prefixed line per
// segment, the form the segmentation prompt expects. Falls back to the plain
// text for transcripts that carry no timing.
func TimestampedText(transcript *Transcript) string {
	if len(transcript.Segments) == 0 {
		return transcript.Text
	}

	lines := make([]string, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(seg.Start), strings.TrimSpace(seg.Text)))
	}
	return strings.Join(lines, "\n")
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	// Check for common file path indicators
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	// Check for common file extensions
	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	// Default to treating as file path if it doesn't contain spaces and newlines
	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
