package internal

import (
	"net/url"
	"strconv"
	"strings"
)

// sharePathMarker is the path segment that precedes the recording identifier
// in a Zoom share URL.
const sharePathMarker = "/rec/share/"

// ResolveShareLink extracts the recording identifier and optional startTime
// hint from a Zoom share URL.
//
// Two formats are recognized:
//
//	https://us02web.zoom.us/rec/share/K87Fx1wSLf...?startTime=1604240384000
//	https://zoom.us/rec/play/...?recording_id=abc123
//
// The identifier is the path segment immediately following /rec/share/,
// stripped of any trailing path or query string. When neither pattern matches
// the link cannot be correlated with the API and a *ParseError is returned.
func ResolveShareLink(shareURL string) (ShareLink, error) {
	shareURL = strings.TrimSpace(shareURL)

	u, err := url.Parse(shareURL)
	if err != nil {
		return ShareLink{}, &ParseError{URL: shareURL, Reason: err.Error()}
	}

	link := ShareLink{URL: shareURL}
	if ms := u.Query().Get("startTime"); ms != "" {
		if v, err := strconv.ParseInt(ms, 10, 64); err == nil {
			link.StartTimeMillis = v
		}
	}

	if _, after, ok := strings.Cut(u.Path, sharePathMarker); ok {
		id := after
		if i := strings.IndexAny(id, "/?"); i >= 0 {
			id = id[:i]
		}
		if id != "" {
			link.RecordingID = id
			return link, nil
		}
	}

	if id := u.Query().Get("recording_id"); id != "" {
		link.RecordingID = id
		return link, nil
	}

	return ShareLink{}, &ParseError{URL: shareURL, Reason: "no recording identifier in path or query"}
}
