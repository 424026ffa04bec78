package internal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// structuredCSVName is the master spreadsheet every exported video appends to.
const structuredCSVName = "all_videos_structured.csv"

// VideoMeta carries the catalog details attached to a structured export.
type VideoMeta struct {
	Name            string  `json:"video_name"`
	Date            string  `json:"date"`
	Teacher         string  `json:"teacher"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// StructuredVideo is the per-video JSON document: the segmentation keyed by
// section type so downstream tooling can pull one section's text directly.
type StructuredVideo struct {
	VideoMeta
	OverallSummary string                       `json:"overall_summary"`
	DetectedOrder  []string                     `json:"detected_order"`
	Sections       map[string]StructuredSection `json:"sections"`
}

// StructuredSection is one section's content within a StructuredVideo.
type StructuredSection struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Summary   string `json:"summary"`
}

var structuredCSVHeader = []string{
	"Video_Name",
	"Date",
	"Teacher",
	"Duration_Minutes",
	"Overall_Summary",
	"Salam_Time_Ice_Breaker",
	"Discussion_Topic",
	"Quran_Recitation",
	"Arabic",
	"Worship",
}

// AppendStructuredCSV adds one row for the video to the master CSV, creating
// the file with a header row on first use.
func AppendStructuredCSV(segmentation *Segmentation, meta VideoMeta, csvPath string) error {
	writeHeader := !FileExists(csvPath)

	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening structured CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(structuredCSVHeader); err != nil {
			return fmt.Errorf("writing structured CSV header: %w", err)
		}
	}

	texts := make(map[string]string, len(SectionTypes))
	for _, section := range segmentation.Sections {
		if _, ok := texts[section.Type]; !ok {
			texts[section.Type] = section.Text
		}
	}

	row := []string{
		meta.Name,
		meta.Date,
		meta.Teacher,
		fmt.Sprintf("%.1f", meta.DurationMinutes),
		segmentation.OverallSummary,
	}
	for _, sectionType := range SectionTypes {
		row = append(row, texts[sectionType])
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing structured CSV row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing structured CSV: %w", err)
	}
	return nil
}

// WriteStructuredJSON saves the per-video structured document.
func WriteStructuredJSON(segmentation *Segmentation, meta VideoMeta, jsonPath string) error {
	structured := StructuredVideo{
		VideoMeta:      meta,
		OverallSummary: segmentation.OverallSummary,
		DetectedOrder:  segmentation.DetectedOrder,
		Sections:       make(map[string]StructuredSection, len(segmentation.Sections)),
	}
	for _, section := range segmentation.Sections {
		structured.Sections[section.Type] = StructuredSection{
			Text:      section.Text,
			WordCount: section.WordCount,
			StartTime: section.StartTime,
			EndTime:   section.EndTime,
			Summary:   section.Summary,
		}
	}

	data, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling structured export: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("saving structured export: %w", err)
	}
	return nil
}

// ExportStructured writes a video's segmentation to both structured formats:
// one JSON document per video plus a row in the shared CSV.
func ExportStructured(segmentation *Segmentation, meta VideoMeta, outputDir string) error {
	if err := EnsureDirs(outputDir); err != nil {
		return fmt.Errorf("creating structured output directory: %w", err)
	}

	jsonPath := filepath.Join(outputDir, SafeFilename(meta.Name)+"_structured.json")
	if err := WriteStructuredJSON(segmentation, meta, jsonPath); err != nil {
		return err
	}
	return AppendStructuredCSV(segmentation, meta, filepath.Join(outputDir, structuredCSVName))
}

// LoadStructuredDir reads every *_structured.json document in a directory.
func LoadStructuredDir(dir string) ([]StructuredVideo, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*_structured.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning structured directory: %w", err)
	}

	videos := make([]StructuredVideo, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var video StructuredVideo
		if err := json.Unmarshal(data, &video); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// SectionTexts collects the non-empty text of one section type across videos.
func SectionTexts(videos []StructuredVideo, sectionType string) []string {
	var texts []string
	for _, video := range videos {
		if section, ok := video.Sections[sectionType]; ok && section.Text != "" {
			texts = append(texts, section.Text)
		}
	}
	return texts
}

// BuildSectionManual combines one section type from all videos into a single
// markdown document.
func BuildSectionManual(videos []StructuredVideo, sectionType string) string {
	texts := SectionTexts(videos, sectionType)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Combined Content\n\n", sectionType)
	fmt.Fprintf(&b, "Total videos: %d\n", len(texts))
	b.WriteString(strings.Repeat("=", 70) + "\n\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "## Video %d\n\n", i+1)
		b.WriteString(text + "\n\n")
		b.WriteString(strings.Repeat("-", 70) + "\n\n")
	}
	return b.String()
}
