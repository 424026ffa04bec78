package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// hintWindow bounds the search around a startTime hint.
	hintWindow = 7 * 24 * time.Hour
	// defaultWindow is used when the share link carries no hint.
	defaultWindow = 30 * 24 * time.Hour
	// timestampTolerance is the maximum distance between a hinted start time
	// and a file's recording_start for the timestamp heuristic to match.
	// Inclusive: exactly 300 seconds still matches.
	timestampTolerance = 300 * time.Second
)

// Locator matches a parsed share link against the account's cloud recordings.
type Locator struct {
	zoom *ZoomClient
	log  zerolog.Logger
	// now is replaceable in tests.
	now func() time.Time
}

// NewLocator creates a locator backed by the given Zoom client.
func NewLocator(zoom *ZoomClient, log zerolog.Logger) *Locator {
	return &Locator{zoom: zoom, log: log, now: time.Now}
}

// Locate pages through the recording list inside the link's search window and
// tests each record against the match heuristics, in priority order:
//
//  1. the record's share URL contains the link's recording ID;
//  2. any file's recording_start is within 300s of the startTime hint;
//  3. the record's UUID contains the recording ID.
//
// The full window is accumulated before matching, so a miss means the whole
// account listing was examined. A miss returns ErrNotFound; it is a normal
// outcome because the share link may belong to a different account.
func (l *Locator) Locate(ctx context.Context, link ShareLink) (*ResolvedTarget, error) {
	from, to := l.searchWindow(link)
	l.log.Debug().
		Str("recording_id", link.RecordingID).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("searching cloud recordings")

	records, err := l.zoom.ListRecordings(ctx, from, to, 0)
	if err != nil {
		return nil, err
	}

	for i := range records {
		record := &records[i]
		method := matchRecord(record, link)
		if method == NoMatch {
			continue
		}

		target := resolveTarget(record, method)
		if target == nil {
			// Matched a record that has no MP4/M4A file; nothing to download.
			l.log.Debug().Str("uuid", record.UUID).Msg("matched record has no video file")
			continue
		}

		l.log.Info().
			Str("topic", record.Topic).
			Stringer("matched_by", method).
			Msg("found matching recording")
		return target, nil
	}

	l.log.Info().
		Str("recording_id", link.RecordingID).
		Int("records", len(records)).
		Msg("no matching recording in window")
	return nil, ErrNotFound
}

func (l *Locator) searchWindow(link ShareLink) (from, to time.Time) {
	if link.HasStartTime() {
		hint := link.StartTime()
		return hint.Add(-hintWindow), hint.Add(hintWindow)
	}
	now := l.now().UTC()
	return now.Add(-defaultWindow), now
}

// matchRecord applies the heuristics in fixed priority order; first hit wins.
func matchRecord(record *RecordingRecord, link ShareLink) MatchMethod {
	if record.ShareURL != "" && strings.Contains(record.ShareURL, link.RecordingID) {
		return MatchedByShareURL
	}

	if link.HasStartTime() {
		hint := link.StartTime()
		for _, f := range record.Files {
			if f.RecordingStart.IsZero() {
				continue
			}
			diff := f.RecordingStart.UTC().Sub(hint)
			if diff < 0 {
				diff = -diff
			}
			if diff <= timestampTolerance {
				return MatchedByTimestamp
			}
		}
	}

	if record.UUID != "" && strings.Contains(record.UUID, link.RecordingID) {
		return MatchedByUUID
	}

	return NoMatch
}

// resolveTarget picks the first MP4/M4A file of a matched record, in API list
// order, and packages it for download. Returns nil when the record has no
// video file.
func resolveTarget(record *RecordingRecord, method MatchMethod) *ResolvedTarget {
	for _, f := range record.Files {
		if !f.IsVideo() {
			continue
		}
		return &ResolvedTarget{
			MeetingID:         record.MeetingID,
			MeetingUUID:       record.UUID,
			Topic:             record.Topic,
			StartTime:         record.StartTime,
			DownloadURL:       f.DownloadURL,
			FileType:          f.FileType,
			FileSize:          f.FileSize,
			MatchedBy:         method,
			SuggestedFilename: fmt.Sprintf("%d_%s%s", record.MeetingID, SafeFilename(record.Topic), f.Extension()),
		}
	}
	return nil
}

// TargetFromRecord packages a record fetched directly by UUID for download.
// Returns ErrNotFound when the record has no MP4/M4A file.
func TargetFromRecord(record *RecordingRecord) (*ResolvedTarget, error) {
	target := resolveTarget(record, NoMatch)
	if target == nil {
		return nil, ErrNotFound
	}
	return target, nil
}
