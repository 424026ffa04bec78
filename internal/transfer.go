package internal

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// transferChunkSize is the write granularity for streaming downloads.
const transferChunkSize = 8 * 1024

// Transfer streams resolved media URLs to local files.
type Transfer struct {
	http *http.Client
	ui   UIManager
	log  zerolog.Logger
}

// NewTransfer creates a file transfer helper.
func NewTransfer(ui UIManager, log zerolog.Logger) *Transfer {
	return &Transfer{
		http: &http.Client{Timeout: 0}, // recordings can take longer than any sane timeout
		ui:   ui,
		log:  log,
	}
}

// WithClient replaces the HTTP client, used to carry a scraper's session
// cookies into the download.
func (t *Transfer) WithClient(hc *http.Client) *Transfer {
	return &Transfer{http: hc, ui: t.ui, log: t.log}
}

// Download streams a media URL to dest. When token is non-empty it is
// appended as an access_token query parameter; Zoom media links authenticate
// via the URL, never via headers. Content-Length is advisory only, and its
// absence must not abort the transfer. Any non-200 status or write failure
// returns a *TransferError.
func (t *Transfer) Download(ctx context.Context, mediaURL, dest, token string) error {
	reqURL := mediaURL
	if token != "" {
		sep := "?"
		if strings.Contains(mediaURL, "?") {
			sep = "&"
		}
		reqURL = mediaURL + sep + "access_token=" + token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransferError{URL: mediaURL, Err: err}
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return &TransferError{URL: mediaURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransferError{URL: mediaURL, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &TransferError{URL: mediaURL, Err: err}
	}

	bar := t.ui.NewByteProgressBar(resp.ContentLength, "Downloading")
	written, err := io.CopyBuffer(io.MultiWriter(out, bar), resp.Body, make([]byte, transferChunkSize))
	bar.Finish()

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// A partial file is useless; remove it so skip-existing logic does
		// not treat it as done.
		os.Remove(dest)
		return &TransferError{URL: mediaURL, Err: err}
	}

	t.log.Info().
		Str("dest", dest).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start).Round(time.Second)).
		Msg("download complete")
	return nil
}
