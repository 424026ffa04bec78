package internal

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indicates a recording could not be matched in the authenticated
// account. Share links are often owned by a different account, so this is an
// expected outcome rather than a failure.
var ErrNotFound = errors.New("recording not found")

// ParseError indicates a share link that matches none of the known formats.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing share link %q: %s", e.URL, e.Reason)
}

// AuthError indicates the OAuth credential exchange failed. It is fatal to the
// whole run; there is no per-item recovery.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zoom authentication: %v", e.Err)
	}
	return fmt.Sprintf("zoom authentication: status %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransferError indicates a download failed mid-stream or was refused. It is
// terminal for the one recording being transferred.
type TransferError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("downloading %s: status %d", e.URL, e.StatusCode)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ShareLink is the parsed form of a Zoom share URL.
type ShareLink struct {
	URL         string
	RecordingID string
	// StartTimeMillis is the epoch-millisecond startTime query parameter when
	// present, zero otherwise. It is only a search-window hint, never ground
	// truth.
	StartTimeMillis int64
}

// HasStartTime reports whether the link carried a startTime hint.
func (s ShareLink) HasStartTime() bool { return s.StartTimeMillis > 0 }

// StartTime returns the hint as a UTC time. Only meaningful when HasStartTime.
func (s ShareLink) StartTime() time.Time {
	return time.UnixMilli(s.StartTimeMillis).UTC()
}

// RecordingFile is a single media artifact of a cloud recording.
type RecordingFile struct {
	FileType       string    `json:"file_type"`
	DownloadURL    string    `json:"download_url"`
	PlayURL        string    `json:"play_url"`
	FileSize       int64     `json:"file_size"`
	RecordingStart time.Time `json:"recording_start"`
	RecordingEnd   time.Time `json:"recording_end"`
}

// IsVideo reports whether the file is a downloadable MP4 or M4A.
func (f RecordingFile) IsVideo() bool {
	return f.FileType == "MP4" || f.FileType == "M4A"
}

// Extension returns the file extension for the file type.
func (f RecordingFile) Extension() string {
	if f.FileType == "MP4" {
		return ".mp4"
	}
	return ".m4a"
}

// RecordingRecord is one meeting's cloud recording as returned by the list
// API. Immutable once fetched.
type RecordingRecord struct {
	MeetingID      int64           `json:"id"`
	UUID           string          `json:"uuid"`
	Topic          string          `json:"topic"`
	StartTime      time.Time       `json:"start_time"`
	Duration       int             `json:"duration"`
	RecordingCount int             `json:"recording_count"`
	ShareURL       string          `json:"share_url"`
	Files          []RecordingFile `json:"recording_files"`
}

// MatchMethod identifies which heuristic matched a share link to a record.
type MatchMethod int

const (
	NoMatch MatchMethod = iota
	MatchedByShareURL
	MatchedByTimestamp
	MatchedByUUID
)

func (m MatchMethod) String() string {
	switch m {
	case MatchedByShareURL:
		return "share_url"
	case MatchedByTimestamp:
		return "timestamp"
	case MatchedByUUID:
		return "uuid"
	default:
		return "none"
	}
}

// ResolvedTarget is the downloadable result of matching a share link against
// the account's recordings, or of scraping the share page. Transient: the
// caller discards it after the download.
type ResolvedTarget struct {
	MeetingID         int64
	MeetingUUID       string
	Topic             string
	StartTime         time.Time
	DownloadURL       string
	FileType          string
	FileSize          int64
	MatchedBy         MatchMethod
	SuggestedFilename string
}
