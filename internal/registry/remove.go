package registry

import (
	"github.com/mirrorhq/reel/internal/index"
)

// RemoveOutput contains the result of the Remove operation.
type RemoveOutput struct {
	Removed bool   `json:"removed"`
	ID      string `json:"id"`
}

// Remove drops the record with the given id from the index. The underlying
// media file is left in place. Removing an unknown id is a no-op.
func Remove(store *index.Store, id string) (*RemoveOutput, error) {
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
		return &RemoveOutput{Removed: false, ID: id}, nil
	}

	records = append(records[:idx], records[idx+1:]...)
	if err := store.Save(records); err != nil {
		return nil, err
	}
	return &RemoveOutput{Removed: true, ID: id}, nil
}
