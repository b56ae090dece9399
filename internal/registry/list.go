package registry

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// ListOutput contains the reconciled session listing, newest first.
type ListOutput struct {
	Items []session.Record `json:"items"`

	// Pruned counts records dropped because their media file is gone.
	Pruned int `json:"pruned"`

	// Synthesized counts records rebuilt from orphan media files.
	Synthesized int `json:"synthesized"`
}

// List loads the index and reconciles it against the sessions directory
// before returning: records whose media file no longer exists are pruned,
// media files missing from the index get a synthesized record, and the
// pruned/backfilled set is persisted whenever reconciliation changed
// anything. A missing or corrupt index degrades to rebuilding from the
// directory contents; List never fails on document shape.
func List(store *index.Store) (*ListOutput, error) {
	store.Lock()
	defer store.Unlock()

	if err := store.EnsureStorageReady(); err != nil {
		return nil, err
	}
	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	kept := make([]session.Record, 0, len(records))
	known := make(map[string]bool, len(records))
	pruned := 0
	for _, rec := range records {
		if _, err := os.Stat(session.URIToPath(rec.MediaPath)); err != nil {
			pruned++
			continue
		}
		kept = append(kept, rec)
		known[rec.ID] = true
	}

	orphans, err := scanOrphans(store.SessionsDir(), known)
	if err != nil {
		return nil, err
	}
	kept = append(kept, orphans...)

	if pruned > 0 || len(orphans) > 0 {
		if err := store.Save(kept); err != nil {
			return nil, err
		}
	}

	sortNewestFirst(kept)
	return &ListOutput{
		Items:       kept,
		Pruned:      pruned,
		Synthesized: len(orphans),
	}, nil
}

// scanOrphans synthesizes minimal records for media files in the sessions
// directory that no indexed record claims. createdAt falls back to the file
// modification time, or the current time if unavailable, so no capture is
// silently invisible.
func scanOrphans(dir string, known map[string]bool) ([]session.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var orphans []session.Record
	for _, entry := range entries {
		if entry.IsDir() || !session.IsMediaFile(entry.Name()) {
			continue
		}
		id := session.IDFromMediaFile(entry.Name())
		if id == "" || known[id] {
			continue
		}

		createdAt := time.Now().UnixMilli()
		if info, err := entry.Info(); err == nil {
			createdAt = info.ModTime().UnixMilli()
		}
		orphans = append(orphans, session.Record{
			ID:        id,
			MediaPath: session.NormalizeURI(filepath.Join(dir, entry.Name())),
			CreatedAt: createdAt,
		})
		known[id] = true
	}
	return orphans, nil
}
