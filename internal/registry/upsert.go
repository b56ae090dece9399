package registry

import (
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// UpsertInput is the wire contract the capture pipeline calls: id always, the
// rest optional. On first insert MediaPath and CreatedAt are mandatory; on a
// later call (e.g. attaching a transcript path) their omission means "leave
// as established", never "first insert".
type UpsertInput struct {
	ID             string
	MediaPath      *string
	CreatedAt      *int64
	DurationMs     *int64
	DevicePosition *session.DevicePosition
	TranscriptPath *string
}

// Upsert inserts or merges a record by id. The existence check and the write
// happen under one lock so two back-to-back upserts for the same id cannot
// lose fields.
func Upsert(store *index.Store, input UpsertInput) (*session.Record, error) {
	id, err := validateID(input.ID)
	if err != nil {
		return nil, err
	}

	store.Lock()
	defer store.Unlock()

	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	if idx := findRecord(records, id); idx >= 0 {
		if err := mergeRecord(&records[idx], UpdateInput{
			ID:             id,
			MediaPath:      input.MediaPath,
			CreatedAt:      input.CreatedAt,
			DurationMs:     input.DurationMs,
			DevicePosition: input.DevicePosition,
			TranscriptPath: input.TranscriptPath,
		}); err != nil {
			return nil, err
		}
		if err := store.Save(records); err != nil {
			return nil, err
		}
		rec := records[idx]
		return &rec, nil
	}

	if input.MediaPath == nil || input.CreatedAt == nil {
		return nil, errors.NewInvalidRequest("mediaPath and createdAt are required for a new session")
	}
	rec, err := newRecord(CreateInput{
		ID:             id,
		MediaPath:      *input.MediaPath,
		CreatedAt:      *input.CreatedAt,
		DurationMs:     input.DurationMs,
		DevicePosition: input.DevicePosition,
		TranscriptPath: input.TranscriptPath,
	})
	if err != nil {
		return nil, err
	}

	records = append(records, *rec)
	if err := store.Save(records); err != nil {
		return nil, err
	}
	return rec, nil
}
