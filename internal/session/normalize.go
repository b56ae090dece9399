package session

import (
	"path/filepath"
	"strings"
	"time"
)

// URIScheme is the canonical prefix for stored paths.
const URIScheme = "file://"

const (
	// MediaSuffix is appended to a session id to form the media filename.
	MediaSuffix = "_session.mp4"

	// TranscriptSuffix replaces MediaSuffix for the transcript side file.
	TranscriptSuffix = ".transcript.json"

	mediaExt = ".mp4"
)

// idLayout formats a capture timestamp as YYYYMMDD_HHMMSS.
const idLayout = "20060102_150405"

// NewID derives a session id from the capture completion time. Ids have
// second granularity; two recordings finishing within the same second share
// an id and merge into one record.
func NewID(t time.Time) string {
	return t.UTC().Format(idLayout)
}

// NormalizeURI rewrites a bare path to canonical file:// form. Paths that
// already carry the scheme are returned unchanged; empty input stays empty.
func NormalizeURI(path string) string {
	if path == "" || strings.HasPrefix(path, URIScheme) {
		return path
	}
	return URIScheme + path
}

// URIToPath strips the file:// scheme if present.
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, URIScheme)
}

// MediaFileName returns the storage filename for a session's video.
func MediaFileName(id string) string {
	return id + MediaSuffix
}

// TranscriptFileName returns the storage filename for a session's transcript.
func TranscriptFileName(id string) string {
	return id + TranscriptSuffix
}

// IDFromMediaFile derives a session id from a media filename: the session
// suffix is stripped when present, otherwise just the extension.
func IDFromMediaFile(name string) string {
	base := filepath.Base(name)
	if id, ok := strings.CutSuffix(base, MediaSuffix); ok && id != "" {
		return id
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TranscriptPathFor derives the transcript path for a media path by replacing
// the known media suffix. Accepts either URI or bare form and preserves it.
func TranscriptPathFor(mediaPath string) string {
	if trimmed, ok := strings.CutSuffix(mediaPath, MediaSuffix); ok {
		return trimmed + TranscriptSuffix
	}
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + TranscriptSuffix
}

// IsMediaFile reports whether a directory entry looks like a recorded clip.
func IsMediaFile(name string) bool {
	return strings.HasSuffix(name, mediaExt)
}
