package internal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanShareLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://zoom.us/rec/share/abc", "https://zoom.us/rec/share/abc"},
		{"https://zoom.us/rec/share/abc\nPasscode: x1Y!z", "https://zoom.us/rec/share/abc"},
		{"https://zoom.us/rec/share/abc Passcode: x1Y!z", "https://zoom.us/rec/share/abc"},
		{"  https://zoom.us/rec/share/abc  ", "https://zoom.us/rec/share/abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanShareLink(tt.in))
	}
}

func TestParseCSVDate(t *testing.T) {
	want := time.Date(2020, 3, 22, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"Mar 22 2020", "Mar 22, 2020", "March 22 2020", "03/22/2020", "2020-03-22"} {
		got, err := ParseCSVDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseCSVDate("next Tuesday")
	assert.Error(t, err)
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadBatchCSVWithHeader(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Name of the Meeting,Email,Meeting ID,Date,Time,Meeting Type,Teacher,Share Link",
		`Friday Class,teacher@example.com,123,"Mar 22, 2020",5pm,Weekly,Marwa,"https://zoom.us/rec/share/abc`,
		`Passcode: secret"`,
		",,,,,,,https://zoom.us/rec/share/no-name",
		"Saturday Class,,,bad date,,,Sara,https://zoom.us/rec/share/def",
	}, "\n"))

	entries, err := ReadBatchCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Friday Class", entries[0].Name)
	assert.Equal(t, "Marwa", entries[0].Teacher)
	assert.Equal(t, "https://zoom.us/rec/share/abc", entries[0].ShareLink)
	assert.True(t, entries[0].HasDate())
	assert.Equal(t, time.Date(2020, 3, 22, 0, 0, 0, 0, time.UTC), entries[0].Date)

	assert.Equal(t, "Saturday Class", entries[1].Name)
	assert.False(t, entries[1].HasDate())
}

func TestReadBatchCSVHeaderless(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Friday Class,a@b.com,123,Mar 22 2020,5pm,Weekly,Marwa,https://zoom.us/rec/share/abc",
		"short,row",
	}, "\n"))

	entries, err := ReadBatchCSV(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Friday Class", entries[0].Name)
	assert.Equal(t, "123", entries[0].MeetingID)
	assert.Equal(t, "Marwa", entries[0].Teacher)
	assert.Equal(t, "https://zoom.us/rec/share/abc", entries[0].ShareLink)
}

func TestMatchCatalog(t *testing.T) {
	records := []RecordingRecord{
		{
			UUID:      "uuid-share",
			Topic:     "API topic",
			ShareURL:  "https://zoom.us/rec/share/abc123?x=1",
			StartTime: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			UUID:      "uuid-date",
			Topic:     "Friday Class with Marwa",
			StartTime: time.Date(2020, 3, 22, 17, 0, 0, 0, time.UTC),
		},
	}

	entries := []BatchEntry{
		{Name: "Anything", ShareLink: "https://zoom.us/rec/share/abc123"},
		{Name: "Friday Class", DateText: "Mar 22 2020", Date: time.Date(2020, 3, 22, 0, 0, 0, 0, time.UTC)},
		{Name: "Unknown Meeting", ShareLink: "https://zoom.us/rec/share/zzz"},
	}

	matched, unmatched := MatchCatalog(entries, records)
	require.Len(t, matched, 2)
	require.Len(t, unmatched, 1)

	assert.Equal(t, "uuid-share", matched[0].UUID)
	assert.Equal(t, "share_url", matched[0].Method)
	assert.Equal(t, "uuid-date", matched[1].UUID)
	assert.Equal(t, "date_and_name", matched[1].Method)
	assert.Equal(t, "Unknown Meeting", unmatched[0].Name)
}

func TestSimilarTopics(t *testing.T) {
	assert.True(t, similarTopics("Friday Class", "friday class with marwa"))
	assert.True(t, similarTopics("A very long meeting title here", "a very long meeting title differs"))
	assert.False(t, similarTopics("Arabic", "Quran"))
}

func TestWriteMatchCSV(t *testing.T) {
	matched := []CatalogMatch{{
		Entry:        BatchEntry{Name: "Friday", DateText: "Mar 22 2020", ShareLink: "https://zoom.us/rec/share/abc"},
		UUID:         "uuid-1",
		APITopic:     "Friday Class",
		APIStartTime: time.Date(2020, 3, 22, 17, 0, 0, 0, time.UTC),
		Method:       "share_url",
	}}
	unmatched := []BatchEntry{{Name: "Lost", ShareLink: "https://zoom.us/rec/share/zzz"}}

	var sb strings.Builder
	require.NoError(t, WriteMatchCSV(matched, unmatched, &sb))

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, matchCSVHeader, rows[0])
	assert.Equal(t, "MATCHED", rows[1][8])
	assert.Equal(t, "uuid-1", rows[1][4])
	assert.Equal(t, "UNMATCHED", rows[2][8])
	assert.Equal(t, "NOT_FOUND", rows[2][4])
}

func TestWriteCatalogCSV(t *testing.T) {
	records := []RecordingRecord{{
		MeetingID:      42,
		UUID:           "uuid-42",
		Topic:          "Class",
		StartTime:      time.Date(2020, 3, 22, 17, 0, 0, 0, time.UTC),
		Duration:       45,
		RecordingCount: 3,
		ShareURL:       "https://zoom.us/rec/share/abc",
		Files: []RecordingFile{
			{FileType: "MP4", FileSize: 2 << 20},
			{FileType: "MP4", FileSize: 1 << 20},
			{FileType: "M4A", FileSize: 1 << 20},
			{FileType: "CHAT", FileSize: 500},
		},
	}}

	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, WriteCatalogCSV(records, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, catalogCSVHeader, rows[0])
	assert.Equal(t, "uuid-42", rows[1][0])
	assert.Equal(t, "42", rows[1][1])
	assert.Equal(t, "MP4, M4A", rows[1][6])
	assert.Equal(t, "4.0", rows[1][7])
}
