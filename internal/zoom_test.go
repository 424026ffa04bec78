package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExchange(t *testing.T) {
	var gotAuth string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-1", ExpiresIn: 3600})
	}))
	defer srv.Close()

	client := NewZoomClient("my-account", "my-id", "my-secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL))

	token, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Credentials go in the basic auth header, account in the query.
	user, pass, ok := parseBasicAuth(gotAuth)
	require.True(t, ok)
	assert.Equal(t, "my-id", user)
	assert.Equal(t, "my-secret", pass)
	assert.Equal(t, "account_credentials", gotQuery.Get("grant_type"))
	assert.Equal(t, "my-account", gotQuery.Get("account_id"))
}

func parseBasicAuth(header string) (string, string, bool) {
	r := &http.Request{Header: http.Header{"Authorization": []string{header}}}
	return r.BasicAuth()
}

func TestTokenReusedUntilExpiry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	}))
	defer srv.Close()

	client := NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL))

	for range 3 {
		_, err := client.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)

	// Force expiry; the next call must exchange again.
	client.tokenExp = time.Now().Add(-time.Minute)
	_, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTokenAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"reason":"Invalid client"}`))
	}))
	defer srv.Close()

	client := NewZoomClient("acc", "id", "bad", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL))

	_, err := client.Token(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "Invalid client")
}

func TestListRecordingsPagination(t *testing.T) {
	var tokens []string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/users/me/recordings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "300", r.URL.Query().Get("page_size"))
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2020-12-31", r.URL.Query().Get("to"))

		next := r.URL.Query().Get("next_page_token")
		tokens = append(tokens, next)
		if next == "" {
			json.NewEncoder(w).Encode(recordingsPage{
				Meetings:      []RecordingRecord{{UUID: "a"}, {UUID: "b"}},
				NextPageToken: "cursor-1",
			})
			return
		}
		json.NewEncoder(w).Encode(recordingsPage{
			Meetings: []RecordingRecord{{UUID: "c"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL+"/oauth/token"))

	from := mustDate(t, "2020-01-01")
	to := mustDate(t, "2020-12-31")
	records, err := client.ListRecordings(context.Background(), from, to, 0)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"", "cursor-1"}, tokens)
	assert.Equal(t, "c", records[2].UUID)
}

func TestListRecordingsMaxCap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/users/me/recordings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordingsPage{
			Meetings:      []RecordingRecord{{UUID: "a"}, {UUID: "b"}, {UUID: "c"}},
			NextPageToken: "never-followed",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL+"/oauth/token"))

	records, err := client.ListRecordings(context.Background(), mustDate(t, "2020-01-01"), mustDate(t, "2020-02-01"), 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordingByUUID(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		if strings.Contains(gotPath, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(RecordingRecord{UUID: "found", Topic: "Class"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL+"/oauth/token"))

	record, err := client.RecordingByUUID(context.Background(), "simple-uuid==")
	require.NoError(t, err)
	assert.Equal(t, "found", record.UUID)

	_, err = client.RecordingByUUID(context.Background(), "missing-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordingByUUIDDoubleEscaping(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(RecordingRecord{UUID: "x"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewZoomClient("acc", "id", "secret", "me", zerolog.Nop(),
		WithZoomEndpoints(srv.URL, srv.URL+"/oauth/token"))

	// UUIDs starting with a slash must be escaped twice so the path survives
	// intermediary normalization.
	_, err := client.RecordingByUUID(context.Background(), "/starts/with/slash")
	require.NoError(t, err)
	assert.Contains(t, gotPath, "%252F")
	assert.NotContains(t, strings.TrimPrefix(gotPath, "/meetings/"), "/starts")
}

func mustDate(t *testing.T, s string) (parsed time.Time) {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}
