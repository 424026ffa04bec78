package internal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSegmentation() *Segmentation {
	return &Segmentation{
		OverallSummary: "Class about travel",
		DetectedOrder:  []string{"Salam Time/Ice Breaker", "Discussion Topic"},
		Sections: []Section{
			{Type: "Salam Time/Ice Breaker", StartTime: "00:00", EndTime: "02:00", Text: "salam text", WordCount: 2},
			{Type: "Discussion Topic", StartTime: "02:00", EndTime: "30:00", Text: "discussion text", WordCount: 2},
		},
	}
}

func TestAppendStructuredCSVHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.csv")
	meta := VideoMeta{Name: "Friday Class", Date: "2020-03-22", Teacher: "Marwa", DurationMinutes: 45}

	require.NoError(t, AppendStructuredCSV(sampleSegmentation(), meta, path))
	require.NoError(t, AppendStructuredCSV(sampleSegmentation(), meta, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// One header plus two data rows.
	require.Len(t, rows, 3)
	assert.Equal(t, structuredCSVHeader, rows[0])
	assert.Equal(t, "Friday Class", rows[1][0])
	assert.Equal(t, "45.0", rows[1][3])
	assert.Equal(t, "salam text", rows[1][5])
	assert.Equal(t, "discussion text", rows[1][6])
	// Missing sections come through as empty cells, not dropped columns.
	assert.Equal(t, "", rows[1][7])
	assert.Equal(t, "", rows[1][9])
}

func TestStructuredJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := VideoMeta{Name: "Friday Class", Date: "2020-03-22", Teacher: "Marwa", DurationMinutes: 45}
	require.NoError(t, ExportStructured(sampleSegmentation(), meta, dir))

	assert.True(t, FileExists(filepath.Join(dir, "Friday_Class_structured.json")))
	assert.True(t, FileExists(filepath.Join(dir, structuredCSVName)))

	videos, err := LoadStructuredDir(dir)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	video := videos[0]
	assert.Equal(t, "Friday Class", video.Name)
	assert.Equal(t, "Class about travel", video.OverallSummary)
	require.Contains(t, video.Sections, "Discussion Topic")
	assert.Equal(t, "discussion text", video.Sections["Discussion Topic"].Text)
}

func TestBuildSectionManual(t *testing.T) {
	videos := []StructuredVideo{
		{Sections: map[string]StructuredSection{"Arabic": {Text: "alif ba ta"}}},
		{Sections: map[string]StructuredSection{"Worship": {Text: "not this one"}}},
		{Sections: map[string]StructuredSection{"Arabic": {Text: "tha jim ha"}}},
	}

	manual := BuildSectionManual(videos, "Arabic")
	assert.Contains(t, manual, "# Arabic - Combined Content")
	assert.Contains(t, manual, "Total videos: 2")
	assert.Contains(t, manual, "## Video 1\n\nalif ba ta")
	assert.Contains(t, manual, "## Video 2\n\ntha jim ha")
	assert.NotContains(t, manual, "not this one")
}

func TestSectionTextsSkipsEmpty(t *testing.T) {
	videos := []StructuredVideo{
		{Sections: map[string]StructuredSection{"Arabic": {Text: ""}}},
		{Sections: map[string]StructuredSection{"Arabic": {Text: "content"}}},
	}
	assert.Equal(t, []string{"content"}, SectionTexts(videos, "Arabic"))
}
