package registry

import (
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// CreateInput contains the mandatory first-insert fields plus any optional
// metadata known at creation time. Requiring MediaPath and CreatedAt here,
// as values rather than pointers, is what enforces the first-insert contract.
type CreateInput struct {
	ID             string
	MediaPath      string
	CreatedAt      int64 // epoch ms
	DurationMs     *int64
	DevicePosition *session.DevicePosition
	TranscriptPath *string
}

// Create inserts a new session record. Fails with a conflict if the id is
// already present.
func Create(store *index.Store, input CreateInput) (*session.Record, error) {
	rec, err := newRecord(input)
	if err != nil {
		return nil, err
	}

	store.Lock()
	defer store.Unlock()

	records, err := store.Load()
	if err != nil {
		return nil, err
	}
	if findRecord(records, rec.ID) >= 0 {
		return nil, errors.NewConflict("session already exists: " + rec.ID)
	}

	records = append(records, *rec)
	if err := store.Save(records); err != nil {
		return nil, err
	}
	return rec, nil
}

// newRecord validates CreateInput and builds a record with canonical paths.
func newRecord(input CreateInput) (*session.Record, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}
	if input.MediaPath == "" {
		return nil, errors.NewInvalidRequest("mediaPath is required for a new session")
	}
	if input.CreatedAt <= 0 {
		return nil, errors.NewInvalidRequest("createdAt is required for a new session")
	}
	if input.DevicePosition != nil && !input.DevicePosition.Valid() {
		return nil, errors.NewInvalidRequest("devicePosition must be one of: front, back")
	}

	rec := &session.Record{
		ID:             id,
		MediaPath:      session.NormalizeURI(input.MediaPath),
		CreatedAt:      input.CreatedAt,
		DurationMs:     input.DurationMs,
		DevicePosition: input.DevicePosition,
	}
	if input.TranscriptPath != nil {
		normalized := session.NormalizeURI(*input.TranscriptPath)
		rec.TranscriptPath = &normalized
	}
	return rec, nil
}
