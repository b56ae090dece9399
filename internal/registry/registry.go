// Package registry implements the durable session index operations: typed
// create/update, the upsert contract the capture pipeline calls, and listing
// with filesystem reconciliation. All operations serialize through the
// store's mutex; the backing document is rewritten in full on every write.
package registry

import (
	"sort"
	"strings"

	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/session"
)

// findRecord returns the index of the record with the given id, or -1.
func findRecord(records []session.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// sortNewestFirst orders records by createdAt descending. Ids tie-break so
// repeated lists over the same data are deterministic.
func sortNewestFirst(records []session.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return records[i].ID > records[j].ID
	})
}

// validateID checks the one field every operation requires.
func validateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}
