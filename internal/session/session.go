package session

// DevicePosition identifies which camera lens recorded a clip.
type DevicePosition string

const (
	DevicePositionFront DevicePosition = "front"
	DevicePositionBack  DevicePosition = "back"
)

// Valid reports whether p is a known lens value.
func (p DevicePosition) Valid() bool {
	return p == DevicePositionFront || p == DevicePositionBack
}

// Record is one entry in the session index. Field names match the on-disk
// index document, which the capture client reads directly.
type Record struct {
	// ID is derived from the capture timestamp (YYYYMMDD_HHMMSS)
	ID string `json:"id"`

	// MediaPath is the file:// URI of the persisted video
	MediaPath string `json:"mediaPath"`

	// CreatedAt is epoch milliseconds
	CreatedAt int64 `json:"createdAt"`

	// DurationMs is the capture duration; nil when the start time was not tracked
	DurationMs *int64 `json:"durationMs,omitempty"`

	// DevicePosition is the lens used, when known
	DevicePosition *DevicePosition `json:"devicePosition,omitempty"`

	// TranscriptPath is the file:// URI of the transcript side file, set by a
	// later update once the transcript step has run
	TranscriptPath *string `json:"transcriptPath,omitempty"`
}
