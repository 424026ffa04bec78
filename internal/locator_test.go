package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRecordPriority(t *testing.T) {
	hint := time.Date(2020, 11, 1, 14, 0, 0, 0, time.UTC)
	link := ShareLink{
		RecordingID:     "abc123",
		StartTimeMillis: hint.UnixMilli(),
	}

	tests := []struct {
		name   string
		record RecordingRecord
		want   MatchMethod
	}{
		{
			name: "share url wins over everything",
			record: RecordingRecord{
				ShareURL: "https://zoom.us/rec/share/abc123",
				UUID:     "abc123uuid",
				Files:    []RecordingFile{{RecordingStart: hint}},
			},
			want: MatchedByShareURL,
		},
		{
			name: "timestamp beats uuid",
			record: RecordingRecord{
				ShareURL: "https://zoom.us/rec/share/other",
				UUID:     "xxabc123xx",
				Files:    []RecordingFile{{RecordingStart: hint.Add(100 * time.Second)}},
			},
			want: MatchedByTimestamp,
		},
		{
			name: "exactly 300s still matches",
			record: RecordingRecord{
				Files: []RecordingFile{{RecordingStart: hint.Add(300 * time.Second)}},
			},
			want: MatchedByTimestamp,
		},
		{
			name: "301s does not match",
			record: RecordingRecord{
				Files: []RecordingFile{{RecordingStart: hint.Add(301 * time.Second)}},
			},
			want: NoMatch,
		},
		{
			name: "zero recording_start is skipped",
			record: RecordingRecord{
				Files: []RecordingFile{{}},
			},
			want: NoMatch,
		},
		{
			name: "uuid substring",
			record: RecordingRecord{
				UUID: "prefix-abc123-suffix",
			},
			want: MatchedByUUID,
		},
		{
			name:   "nothing matches",
			record: RecordingRecord{ShareURL: "https://zoom.us/rec/share/zzz", UUID: "zzz"},
			want:   NoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchRecord(&tt.record, link))
		})
	}
}

func TestMatchRecordNoHintSkipsTimestamp(t *testing.T) {
	link := ShareLink{RecordingID: "abc123"}
	record := RecordingRecord{
		Files: []RecordingFile{{RecordingStart: time.Now()}},
	}
	assert.Equal(t, NoMatch, matchRecord(&record, link))
}

func TestResolveTargetPicksFirstVideoFile(t *testing.T) {
	record := RecordingRecord{
		MeetingID: 123456789,
		UUID:      "uuid-1",
		Topic:     "Friday Class: Seerah",
		Files: []RecordingFile{
			{FileType: "CHAT", DownloadURL: "https://zoom.us/chat"},
			{FileType: "M4A", DownloadURL: "https://zoom.us/audio", FileSize: 10},
			{FileType: "MP4", DownloadURL: "https://zoom.us/video", FileSize: 20},
		},
	}

	target := resolveTarget(&record, MatchedByShareURL)
	require.NotNil(t, target)
	assert.Equal(t, "https://zoom.us/audio", target.DownloadURL)
	assert.Equal(t, "M4A", target.FileType)
	assert.Equal(t, "123456789_Friday_Class_Seerah.m4a", target.SuggestedFilename)
	assert.Equal(t, MatchedByShareURL, target.MatchedBy)
}

func TestTargetFromRecordWithoutVideo(t *testing.T) {
	record := RecordingRecord{
		Files: []RecordingFile{{FileType: "TRANSCRIPT"}},
	}
	_, err := TargetFromRecord(&record)
	assert.ErrorIs(t, err, ErrNotFound)
}

// fakeZoom serves a token endpoint and a paged recordings listing.
func fakeZoom(t *testing.T, pages []recordingsPage) *ZoomClient {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: 3600})
	})
	mux.HandleFunc("/users/me/recordings", func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if r.URL.Query().Get("next_page_token") != "" {
			idx = 1
		}
		require.Less(t, idx, len(pages))
		json.NewEncoder(w).Encode(pages[idx])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL+"/oauth/token"))
}

func TestLocateAccumulatesAllPagesBeforeMatching(t *testing.T) {
	pages := []recordingsPage{
		{
			Meetings:      []RecordingRecord{{UUID: "other", Topic: "First page"}},
			NextPageToken: "page2",
		},
		{
			Meetings: []RecordingRecord{{
				UUID:     "uuid-2",
				Topic:    "Second page",
				ShareURL: "https://zoom.us/rec/share/abc123",
				Files:    []RecordingFile{{FileType: "MP4", DownloadURL: "https://zoom.us/dl"}},
			}},
		},
	}

	locator := NewLocator(fakeZoom(t, pages), zerolog.Nop())
	target, err := locator.Locate(context.Background(), ShareLink{RecordingID: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "uuid-2", target.MeetingUUID)
	assert.Equal(t, MatchedByShareURL, target.MatchedBy)
}

func TestLocateNotFound(t *testing.T) {
	pages := []recordingsPage{
		{Meetings: []RecordingRecord{{UUID: "other", ShareURL: "https://zoom.us/rec/share/zzz"}}},
	}

	locator := NewLocator(fakeZoom(t, pages), zerolog.Nop())
	_, err := locator.Locate(context.Background(), ShareLink{RecordingID: "abc123"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocateSkipsMatchWithoutVideoFile(t *testing.T) {
	pages := []recordingsPage{
		{Meetings: []RecordingRecord{
			{
				UUID:     "no-video",
				ShareURL: "https://zoom.us/rec/share/abc123",
				Files:    []RecordingFile{{FileType: "CHAT"}},
			},
			{
				UUID:  "with-video-abc123",
				Files: []RecordingFile{{FileType: "MP4", DownloadURL: "https://zoom.us/dl"}},
			},
		}},
	}

	locator := NewLocator(fakeZoom(t, pages), zerolog.Nop())
	target, err := locator.Locate(context.Background(), ShareLink{RecordingID: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "with-video-abc123", target.MeetingUUID)
	assert.Equal(t, MatchedByUUID, target.MatchedBy)
}

func TestSearchWindow(t *testing.T) {
	fixed := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	locator := &Locator{now: func() time.Time { return fixed }}

	from, to := locator.searchWindow(ShareLink{})
	assert.Equal(t, fixed.Add(-30*24*time.Hour), from)
	assert.Equal(t, fixed, to)

	hint := time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC)
	from, to = locator.searchWindow(ShareLink{StartTimeMillis: hint.UnixMilli()})
	assert.Equal(t, hint.Add(-7*24*time.Hour), from)
	assert.Equal(t, hint.Add(7*24*time.Hour), to)
}
