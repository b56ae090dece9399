package registry

import (
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// Fetch returns a single record by id, without reconciling against disk.
func Fetch(store *index.Store, id string) (*session.Record, error) {
	id, err := validateID(id)
	if err != nil {
		return nil, err
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

	rec := records[idx]
	return &rec, nil
}
