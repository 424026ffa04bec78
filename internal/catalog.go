package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var catalogCSVHeader = []string{
	"Meeting UUID",
	"Meeting ID",
	"Topic",
	"Start Time",
	"Duration (min)",
	"Recording Count",
	"Video File Types",
	"Total Size (MB)",
	"Share URL",
}

// WriteCatalogCSV exports a recordings listing to CSV, one row per meeting.
// The UUID column is the reliable handle for later downloads.
func WriteCatalogCSV(records []RecordingRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(catalogCSVHeader); err != nil {
		return fmt.Errorf("writing catalog header: %w", err)
	}

	for _, rec := range records {
		var fileTypes []string
		var totalSize int64
		seen := map[string]bool{}
		for _, file := range rec.Files {
			if !file.IsVideo() {
				continue
			}
			totalSize += file.FileSize
			if !seen[file.FileType] {
				seen[file.FileType] = true
				fileTypes = append(fileTypes, file.FileType)
			}
		}

		row := []string{
			rec.UUID,
			strconv.FormatInt(rec.MeetingID, 10),
			rec.Topic,
			rec.StartTime.Format(time.RFC3339),
			strconv.Itoa(rec.Duration),
			strconv.Itoa(rec.RecordingCount),
			strings.Join(fileTypes, ", "),
			fmt.Sprintf("%.1f", float64(totalSize)/(1024*1024)),
			rec.ShareURL,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing catalog row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing catalog CSV: %w", err)
	}
	return nil
}

// BatchEntry is one manually cataloged recording from an input CSV.
type BatchEntry struct {
	Name      string
	MeetingID string
	DateText  string
	Date      time.Time
	Teacher   string
	ShareLink string
}

// HasDate reports whether the entry's date column parsed successfully.
func (e BatchEntry) HasDate() bool { return !e.Date.IsZero() }

// CleanShareLink strips the passcode annotations people paste next to share
// links ("https://... Passcode: xyz", sometimes on a second line).
func CleanShareLink(link string) string {
	link, _, _ = strings.Cut(link, "\n")
	if idx := strings.Index(link, "Passcode:"); idx >= 0 {
		link = link[:idx]
	}
	return strings.TrimSpace(link)
}

var csvDateFormats = []string{
	"Jan 2 2006",
	"January 2 2006",
	"01/02/2006",
	"2006-01-02",
}

// ParseCSVDate parses the date formats seen in manually maintained sheets.
func ParseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	for _, format := range csvDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// Expected column layout when the sheet has no header row.
const (
	batchColName      = 0
	batchColMeetingID = 2
	batchColDate      = 3
	batchColTeacher   = 6
	batchColShareLink = 7
)

// ReadBatchCSV loads recording entries from a manually maintained CSV. Sheets
// with a header row are read by column name, headerless ones by position.
// Rows without both a name and a share link are skipped.
func ReadBatchCSV(path string) ([]BatchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening batch CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading batch CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headerLine := strings.Join(rows[0], ",")
	hasHeader := strings.Contains(headerLine, "Share Link") || strings.Contains(headerLine, "Meeting")

	index := map[string]int{}
	if hasHeader {
		for i, name := range rows[0] {
			index[strings.TrimSpace(name)] = i
		}
		rows = rows[1:]
	}
	column := func(names ...string) int {
		for _, name := range names {
			if i, ok := index[name]; ok {
				return i
			}
		}
		return -1
	}

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var entries []BatchEntry
	for _, row := range rows {
		var entry BatchEntry
		if hasHeader {
			entry = BatchEntry{
				Name:      field(row, column("Name of the Meeting", "Name")),
				MeetingID: field(row, column("Meeting ID")),
				DateText:  field(row, column("Date")),
				Teacher:   field(row, column("Teacher")),
				ShareLink: field(row, column("Share Link")),
			}
		} else {
			if len(row) < 8 {
				continue
			}
			entry = BatchEntry{
				Name:      field(row, batchColName),
				MeetingID: field(row, batchColMeetingID),
				DateText:  field(row, batchColDate),
				Teacher:   field(row, batchColTeacher),
				ShareLink: field(row, batchColShareLink),
			}
		}

		if entry.Name == "" || entry.ShareLink == "" {
			continue
		}
		entry.ShareLink = CleanShareLink(entry.ShareLink)
		if date, err := ParseCSVDate(entry.DateText); err == nil {
			entry.Date = date
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// CatalogMatch pairs a manual entry with the API recording it resolved to.
type CatalogMatch struct {
	Entry        BatchEntry
	UUID         string
	APITopic     string
	APIStartTime time.Time
	Method       string
}

// shareLinkID extracts the opaque recording ID from a share URL without
// requiring the URL to be otherwise well formed.
func shareLinkID(link string) string {
	_, id, ok := strings.Cut(link, sharePathMarker)
	if !ok {
		return ""
	}
	if idx := strings.IndexAny(id, "/?"); idx >= 0 {
		id = id[:idx]
	}
	return id
}

// similarTopics reports whether a sheet name and an API topic plausibly refer
// to the same meeting.
func similarTopics(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	const prefix = 20
	return len(a) >= prefix && len(b) >= prefix && a[:prefix] == b[:prefix]
}

// MatchCatalog matches manual CSV entries against API recordings to recover
// meeting UUIDs. Each entry tries the share-link ID first, then falls back to
// same-day start time with a similar topic.
func MatchCatalog(entries []BatchEntry, records []RecordingRecord) (matched []CatalogMatch, unmatched []BatchEntry) {
	for _, entry := range entries {
		match, ok := matchEntry(entry, records)
		if ok {
			matched = append(matched, match)
		} else {
			unmatched = append(unmatched, entry)
		}
	}
	return matched, unmatched
}

func matchEntry(entry BatchEntry, records []RecordingRecord) (CatalogMatch, bool) {
	entryID := shareLinkID(entry.ShareLink)

	for _, rec := range records {
		if entryID != "" {
			if recID := shareLinkID(rec.ShareURL); recID != "" && strings.Contains(recID, entryID) {
				return CatalogMatch{
					Entry:        entry,
					UUID:         rec.UUID,
					APITopic:     rec.Topic,
					APIStartTime: rec.StartTime,
					Method:       "share_url",
				}, true
			}
		}

		if entry.HasDate() && !rec.StartTime.IsZero() {
			diff := entry.Date.Sub(rec.StartTime)
			if diff < 0 {
				diff = -diff
			}
			if diff < 24*time.Hour && similarTopics(entry.Name, rec.Topic) {
				return CatalogMatch{
					Entry:        entry,
					UUID:         rec.UUID,
					APITopic:     rec.Topic,
					APIStartTime: rec.StartTime,
					Method:       "date_and_name",
				}, true
			}
		}
	}
	return CatalogMatch{}, false
}

var matchCSVHeader = []string{
	"Name",
	"Date",
	"Meeting ID",
	"Share Link",
	"Meeting UUID",
	"API Topic",
	"API Start Time",
	"Match Method",
	"Status",
}

// WriteMatchCSV exports matcher results, matched rows first.
func WriteMatchCSV(matched []CatalogMatch, unmatched []BatchEntry, out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write(matchCSVHeader); err != nil {
		return fmt.Errorf("writing match header: %w", err)
	}

	for _, m := range matched {
		row := []string{
			m.Entry.Name,
			m.Entry.DateText,
			m.Entry.MeetingID,
			m.Entry.ShareLink,
			m.UUID,
			m.APITopic,
			m.APIStartTime.Format(time.RFC3339),
			m.Method,
			"MATCHED",
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing match row: %w", err)
		}
	}
	for _, entry := range unmatched {
		row := []string{
			entry.Name,
			entry.DateText,
			entry.MeetingID,
			entry.ShareLink,
			"NOT_FOUND",
			"",
			"",
			"",
			"UNMATCHED",
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing unmatched row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing match CSV: %w", err)
	}
	return nil
}

// SaveMatchCSV writes matcher results to a file.
func SaveMatchCSV(matched []CatalogMatch, unmatched []BatchEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating match CSV: %w", err)
	}
	defer f.Close()
	return WriteMatchCSV(matched, unmatched, f)
}
