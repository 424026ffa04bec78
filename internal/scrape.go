package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// directFetchPatterns are tried in order against the share page HTML. The
// page structure is undocumented, so this whole path is best effort.
var directFetchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://[^"']+\.zoom\.us/rec/download/[^"']+`),
	regexp.MustCompile(`https://[^"']+\.cloudfront\.net/[^"']+\.mp4[^"']*`),
	regexp.MustCompile(`"downloadUrl":"([^"]+)"`),
	regexp.MustCompile(`"playUrl":"([^"]+)"`),
}

// Scraper extracts direct media URLs from public share pages. It is the
// fallback when the API search misses, typically because the recording
// belongs to a different account.
type Scraper struct {
	http *http.Client
	log  zerolog.Logger
}

// NewScraper creates a share-page scraper. The client carries a cookie jar:
// the session established by loading the page is needed for the media URL it
// reveals.
func NewScraper(log zerolog.Logger) *Scraper {
	jar, _ := cookiejar.New(nil)
	return &Scraper{
		http: &http.Client{Jar: jar, Timeout: 60 * time.Second},
		log:  log,
	}
}

// Client returns the scraper's HTTP client so the subsequent download can
// reuse the share-page session.
func (s *Scraper) Client() *http.Client { return s.http }

// FetchDirect loads the share page and searches it for a plausible media URL.
// Returns ErrNotFound when no pattern matches; the page may require a
// passcode or be restricted.
func (s *Scraper) FetchDirect(ctx context.Context, shareURL string) (*ResolvedTarget, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shareURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building share page request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching share page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching share page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading share page: %w", err)
	}

	for _, pattern := range directFetchPatterns {
		match := pattern.FindSubmatch(body)
		if match == nil {
			continue
		}

		raw := string(match[0])
		if len(match) > 1 {
			raw = string(match[1])
		}
		mediaURL, err := url.QueryUnescape(raw)
		if err != nil {
			mediaURL = raw
		}

		s.log.Debug().Str("url", mediaURL).Msg("found media url in share page")
		return &ResolvedTarget{
			DownloadURL: mediaURL,
			FileType:    "MP4",
		}, nil
	}

	s.log.Debug().Str("share_url", shareURL).Msg("no media url in share page")
	return nil, ErrNotFound
}
