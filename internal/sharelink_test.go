package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShareLink(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantID     string
		wantMillis int64
		wantErr    bool
	}{
		{
			name:   "plain share link",
			url:    "https://us02web.zoom.us/rec/share/K87Fx1wSLfkwCmPSbAabbe1x",
			wantID: "K87Fx1wSLfkwCmPSbAabbe1x",
		},
		{
			name:       "share link with startTime",
			url:        "https://us02web.zoom.us/rec/share/abc123?startTime=1604240384000",
			wantID:     "abc123",
			wantMillis: 1604240384000,
		},
		{
			name:   "trailing path segment stripped",
			url:    "https://zoom.us/rec/share/abc123/extra",
			wantID: "abc123",
		},
		{
			name:   "query stripped from identifier",
			url:    "https://zoom.us/rec/share/abc123?pwd=secret",
			wantID: "abc123",
		},
		{
			name:   "recording_id query fallback",
			url:    "https://zoom.us/rec/play/something?recording_id=xyz789",
			wantID: "xyz789",
		},
		{
			name:    "no identifier",
			url:     "https://zoom.us/rec/play/something",
			wantErr: true,
		},
		{
			name:    "unrelated url",
			url:     "https://example.com/watch?v=123",
			wantErr: true,
		},
		{
			name:    "empty share id",
			url:     "https://zoom.us/rec/share/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ResolveShareLink(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, tt.url, parseErr.URL)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, link.RecordingID)
			assert.Equal(t, tt.url, link.URL)
			assert.Equal(t, tt.wantMillis, link.StartTimeMillis)
		})
	}
}

func TestShareLinkStartTime(t *testing.T) {
	link := ShareLink{StartTimeMillis: 1604240384000}
	require.True(t, link.HasStartTime())
	assert.Equal(t, time.Date(2020, 11, 1, 14, 19, 44, 0, time.UTC), link.StartTime())

	assert.False(t, ShareLink{}.HasStartTime())
}

func TestResolveShareLinkIgnoresBadStartTime(t *testing.T) {
	link, err := ResolveShareLink("https://zoom.us/rec/share/abc?startTime=notanumber")
	require.NoError(t, err)
	assert.False(t, link.HasStartTime())
}
