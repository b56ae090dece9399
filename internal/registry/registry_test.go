package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// newTestStore creates a store over a fresh temp directory with the
// storage layout in place.
func newTestStore(t *testing.T) *index.Store {
	t.Helper()
	store := index.New(t.TempDir())
	if err := store.EnsureStorageReady(); err != nil {
		t.Fatalf("EnsureStorageReady failed: %v", err)
	}
	return store
}

// writeMediaFile drops a small fake clip for the given id into the sessions
// directory and returns its path.
func writeMediaFile(t *testing.T, store *index.Store, id string) string {
	t.Helper()
	path := filepath.Join(store.SessionsDir(), session.MediaFileName(id))
	if err := os.WriteFile(path, []byte("mp4"), 0o600); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(n int64) *int64 {
	return &n
}

func lensPtr(p session.DevicePosition) *session.DevicePosition {
	return &p
}
