package registry

import (
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// UpdateInput carries a partial update for an existing record. Nil fields are
// left untouched; supplied fields override the stored values.
type UpdateInput struct {
	ID             string
	MediaPath      *string
	CreatedAt      *int64
	DurationMs     *int64
	DevicePosition *session.DevicePosition
	TranscriptPath *string
}

func (in UpdateInput) hasFields() bool {
	return in.MediaPath != nil || in.CreatedAt != nil || in.DurationMs != nil ||
		in.DevicePosition != nil || in.TranscriptPath != nil
}

// Update shallow-merges the supplied fields onto an existing record.
// Fails with a not-found error if the id is unknown.
func Update(store *index.Store, input UpdateInput) (*session.Record, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}
	if !input.hasFields() {
		return nil, errors.NewInvalidRequest("at least one field must be provided")
	}

	store.Lock()
	defer store.Unlock()

	records, err := store.Load()
	if err != nil {
		return nil, err
	}
	idx := findRecord(records, id)
	if idx < 0 {
		return nil, errors.NewNotFound(id)
	}

	if err := mergeRecord(&records[idx], input); err != nil {
		return nil, err
	}
	if err := store.Save(records); err != nil {
		return nil, err
	}

	rec := records[idx]
	return &rec, nil
}

// mergeRecord applies the supplied fields onto rec. New values override old;
// absent fields are never reset.
func mergeRecord(rec *session.Record, input UpdateInput) error {
	if input.DevicePosition != nil && !input.DevicePosition.Valid() {
		return errors.NewInvalidRequest("devicePosition must be one of: front, back")
	}

	if input.MediaPath != nil {
		rec.MediaPath = session.NormalizeURI(*input.MediaPath)
	}
	if input.CreatedAt != nil {
		rec.CreatedAt = *input.CreatedAt
	}
	if input.DurationMs != nil {
		rec.DurationMs = input.DurationMs
	}
	if input.DevicePosition != nil {
		rec.DevicePosition = input.DevicePosition
	}
	if input.TranscriptPath != nil {
		normalized := session.NormalizeURI(*input.TranscriptPath)
		rec.TranscriptPath = &normalized
	}
	return nil
}
