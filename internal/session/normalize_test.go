package session

import (
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	ts := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if got := NewID(ts); got != "20250101_090000" {
		t.Errorf("NewID = %q, want %q", got, "20250101_090000")
	}
}

func TestNewID_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := time.Date(2025, 1, 1, 11, 0, 0, 0, loc)
	if got := NewID(ts); got != "20250101_090000" {
		t.Errorf("NewID = %q, want UTC-normalized id", got)
	}
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/r/a.mp4", "file:///r/a.mp4"},
		{"file:///r/a.mp4", "file:///r/a.mp4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeURI(tt.in); got != tt.want {
			t.Errorf("NormalizeURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURIToPath(t *testing.T) {
	if got := URIToPath("file:///r/a.mp4"); got != "/r/a.mp4" {
		t.Errorf("URIToPath = %q", got)
	}
	if got := URIToPath("/r/a.mp4"); got != "/r/a.mp4" {
		t.Errorf("URIToPath on bare path = %q", got)
	}
}

func TestMediaFileNameRoundTrip(t *testing.T) {
	id := "20250101_090000"
	name := MediaFileName(id)
	if name != "20250101_090000_session.mp4" {
		t.Errorf("MediaFileName = %q", name)
	}
	if got := IDFromMediaFile(name); got != id {
		t.Errorf("IDFromMediaFile(%q) = %q, want %q", name, got, id)
	}
}

func TestIDFromMediaFile_BareClip(t *testing.T) {
	// Files without the session suffix fall back to stripping the extension.
	if got := IDFromMediaFile("/r/a.mp4"); got != "a" {
		t.Errorf("IDFromMediaFile = %q, want %q", got, "a")
	}
}

func TestTranscriptPathFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:///r/20250101_090000_session.mp4", "file:///r/20250101_090000.transcript.json"},
		{"/r/a.mp4", "/r/a.transcript.json"},
	}
	for _, tt := range tests {
		if got := TranscriptPathFor(tt.in); got != tt.want {
			t.Errorf("TranscriptPathFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDevicePositionValid(t *testing.T) {
	if !DevicePositionFront.Valid() || !DevicePositionBack.Valid() {
		t.Error("front/back should be valid")
	}
	if DevicePosition("side").Valid() {
		t.Error("unknown lens should be invalid")
	}
}
