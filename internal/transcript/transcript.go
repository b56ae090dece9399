// Package transcript is the stub transcript producer: it writes a structured
// placeholder document next to a session's media file and hands the path back
// to the caller. Real ASR is out of scope; downstream code only ever treats
// the result as an opaque path.
package transcript

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/session"
)

// Model names the producer in the generated document.
const Model = "stub"

// Word is one recognized word with timing. Empty in stub output.
type Word struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// Segment is one contiguous span of speech. Empty in stub output.
type Segment struct {
	Text    string `json:"text"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
}

// Meta carries provenance for the document.
type Meta struct {
	Source string `json:"source"`
}

// Document is the transcript side file format.
type Document struct {
	Type           string                  `json:"type"`
	Model          string                  `json:"model"`
	CreatedAt      int64                   `json:"createdAt"`
	DurationMs     *int64                  `json:"durationMs,omitempty"`
	DevicePosition *session.DevicePosition `json:"devicePosition,omitempty"`
	Words          []Word                  `json:"words"`
	Segments       []Segment               `json:"segments"`
	Meta           Meta                    `json:"meta"`
}

// Produce writes the placeholder document at the deterministic sibling path
// derived from the record's media path and returns that path in canonical
// URI form.
func Produce(rec session.Record) (string, error) {
	doc := Document{
		Type:           "transcript",
		Model:          Model,
		CreatedAt:      time.Now().UnixMilli(),
		DurationMs:     rec.DurationMs,
		DevicePosition: rec.DevicePosition,
		Words:          []Word{},
		Segments:       []Segment{},
		Meta:           Meta{Source: rec.MediaPath},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.NewInternal(err)
	}

	path := session.TranscriptPathFor(session.URIToPath(rec.MediaPath))
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", errors.NewStorageIO("write transcript", err)
	}
	return session.NormalizeURI(path), nil
}
