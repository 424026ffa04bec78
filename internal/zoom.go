package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	zoomAPIBase   = "https://api.zoom.us/v2"
	zoomTokenURL  = "https://zoom.us/oauth/token"
	listPageSize  = 300
	tokenLifeSkew = 30 * time.Second
)

// ZoomClient talks to the Zoom cloud recording API using Server-to-Server
// OAuth. The bearer token is acquired lazily on first use and reused for the
// remainder of the run; it is refreshed only once its reported lifetime has
// passed. The zero value is not usable; construct with NewZoomClient.
type ZoomClient struct {
	accountID    string
	clientID     string
	clientSecret string
	userID       string

	apiBase  string
	tokenURL string
	http     *http.Client
	log      zerolog.Logger

	token    string
	tokenExp time.Time
}

// ZoomOption customizes ZoomClient creation.
type ZoomOption func(*ZoomClient)

// WithZoomEndpoints overrides the API and token URLs, used in tests.
func WithZoomEndpoints(apiBase, tokenURL string) ZoomOption {
	return func(c *ZoomClient) {
		c.apiBase = apiBase
		c.tokenURL = tokenURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ZoomOption {
	return func(c *ZoomClient) {
		c.http = hc
	}
}

// NewZoomClient creates a Zoom API client for one account's recordings.
func NewZoomClient(accountID, clientID, clientSecret, userID string, log zerolog.Logger, options ...ZoomOption) *ZoomClient {
	c := &ZoomClient{
		accountID:    accountID,
		clientID:     clientID,
		clientSecret: clientSecret,
		userID:       userID,
		apiBase:      zoomAPIBase,
		tokenURL:     zoomTokenURL,
		http:         &http.Client{Timeout: 60 * time.Second},
		log:          log,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid bearer token, exchanging credentials on first use and
// again once the previous token has expired.
func (c *ZoomClient) Token(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	u := fmt.Sprintf("%s?grant_type=account_credentials&account_id=%s", c.tokenURL, url.QueryEscape(c.accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AuthError{Err: fmt.Errorf("decoding token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("empty access_token in response")}
	}

	c.token = tr.AccessToken
	if tr.ExpiresIn > 0 {
		c.tokenExp = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenLifeSkew)
	} else {
		// Zoom S2S tokens are valid for one hour.
		c.tokenExp = time.Now().Add(time.Hour - tokenLifeSkew)
	}

	c.log.Debug().Time("expires", c.tokenExp).Msg("obtained zoom access token")
	return c.token, nil
}

type recordingsPage struct {
	Meetings      []RecordingRecord `json:"meetings"`
	NextPageToken string            `json:"next_page_token"`
}

// ListRecordings pages through the user's cloud recordings between from and
// to (inclusive dates) and returns every record, capped at max when max > 0.
func (c *ZoomClient) ListRecordings(ctx context.Context, from, to time.Time, max int) ([]RecordingRecord, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page_size", fmt.Sprint(listPageSize))
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	var records []RecordingRecord
	pages := 0
	for {
		pages++
		u := fmt.Sprintf("%s/users/%s/recordings?%s", c.apiBase, url.PathEscape(c.userID), params.Encode())
		page, err := c.getRecordingsPage(ctx, u, token)
		if err != nil {
			return nil, err
		}

		records = append(records, page.Meetings...)
		c.log.Debug().Int("page", pages).Int("meetings", len(page.Meetings)).Msg("listed recordings page")

		if max > 0 && len(records) >= max {
			records = records[:max]
			break
		}
		if page.NextPageToken == "" {
			break
		}
		params.Set("next_page_token", page.NextPageToken)
	}

	return records, nil
}

// RecordingByUUID fetches a single meeting's recording by its UUID, the
// authoritative identifier from the list API. UUIDs containing slashes must
// be double-escaped per the Zoom API contract.
func (c *ZoomClient) RecordingByUUID(ctx context.Context, uuid string) (*RecordingRecord, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	escaped := url.PathEscape(uuid)
	if strings.HasPrefix(uuid, "/") || strings.Contains(uuid, "//") {
		escaped = url.PathEscape(escaped)
	}

	u := fmt.Sprintf("%s/meetings/%s/recordings", c.apiBase, escaped)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching recording %s: %w", uuid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return nil, fmt.Errorf("fetching recording %s: status %d: %s", uuid, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var record RecordingRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding recording %s: %w", uuid, err)
	}
	return &record, nil
}

func (c *ZoomClient) getRecordingsPage(ctx context.Context, u, token string) (*recordingsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return nil, fmt.Errorf("listing recordings: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page recordingsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding recordings page: %w", err)
	}
	return &page, nil
}
