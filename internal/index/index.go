// Package index owns the session index document: a single JSON array of
// records living inside the storage directory. The document is process-wide
// shared state; callers serialize read-modify-write spans through the store's
// mutex and every save goes through a temp file plus atomic rename.
package index

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/session"
)

// IndexFileName is the name of the index document inside the sessions dir.
const IndexFileName = "index.json"

// Store binds the index document and storage layout to a base directory.
type Store struct {
	mu      sync.Mutex
	baseDir string
}

// New creates a Store rooted at baseDir. Nothing is touched on disk until
// EnsureStorageReady or a write.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Lock acquires the store-wide mutex. Registry operations hold it for their
// whole read-modify-write span so overlapping upserts cannot clobber each
// other's writes.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the store-wide mutex.
func (s *Store) Unlock() { s.mu.Unlock() }

// BaseDir returns the storage root.
func (s *Store) BaseDir() string { return s.baseDir }

// SessionsDir returns the directory holding media files and the index.
func (s *Store) SessionsDir() string { return filepath.Join(s.baseDir, "sessions") }

// TmpDir returns the directory holding in-flight upload part files.
func (s *Store) TmpDir() string { return filepath.Join(s.baseDir, "tmp") }

// ExportsDir returns the default directory for JSONL backups.
func (s *Store) ExportsDir() string { return filepath.Join(s.baseDir, "exports") }

// IndexPath returns the path of the index document.
func (s *Store) IndexPath() string { return filepath.Join(s.SessionsDir(), IndexFileName) }

// EnsureStorageReady idempotently creates the storage layout with restricted
// permissions. Called before any read or write of the index or a media file.
func (s *Store) EnsureStorageReady() error {
	for _, dir := range []string{s.baseDir, s.SessionsDir(), s.TmpDir(), s.ExportsDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.NewStorageIO(fmt.Sprintf("create directory %s", dir), err)
		}
		// Explicit chmod (best-effort, may not work on all platforms)
		_ = os.Chmod(dir, 0o700)
	}
	return nil
}

// Load reads the full index document. A missing or malformed document is
// treated as an empty index, never an error; the next save rewrites a valid
// document. Read failures other than absence are surfaced.
func (s *Store) Load() ([]session.Record, error) {
	data, err := os.ReadFile(s.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorageIO("read index", err)
	}

	var records []session.Record
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupt index: self-heal by treating it as empty.
		return nil, nil
	}
	return records, nil
}

// Save rewrites the whole index document. The document is written to a temp
// file in the same directory and renamed into place so a crash mid-write
// never leaves a partial index behind.
func (s *Store) Save(records []session.Record) error {
	if err := s.EnsureStorageReady(); err != nil {
		return err
	}

	if records == nil {
		records = []session.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}
	data = append(data, '\n')

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := s.IndexPath() + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return errors.NewStorageIO("write index", err)
	}
	if err := os.Rename(tempPath, s.IndexPath()); err != nil {
		os.Remove(tempPath)
		return errors.NewStorageIO("replace index", err)
	}
	return nil
}
