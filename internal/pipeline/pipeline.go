// Package pipeline orchestrates how a finished recording becomes a session
// record: the media file is made durable inside the storage directory first,
// and only then does the registry learn about it. It also carries the chunked
// upload surface the capture client posts recordings through, and the
// transcript step that attaches a side file to an existing record.
package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/registry"
	"github.com/mirrorhq/reel/internal/session"
	"github.com/mirrorhq/reel/internal/transcript"
)

// Pipeline owns in-flight uploads and the ingest/transcribe flows.
type Pipeline struct {
	store *index.Store
	cfg   *config.Config

	mu      sync.Mutex
	uploads map[string]*upload
}

// New creates a Pipeline over the given store.
func New(store *index.Store, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:   store,
		cfg:     cfg,
		uploads: make(map[string]*upload),
	}
}

// Finalize persists a finished recording and records it in the index. The
// source file is copied into the sessions directory under the id-derived
// filename before the upsert runs, so the index never references a transient
// path. startedAt may be zero when start bookkeeping never completed; the
// duration is then unknown and omitted.
func (p *Pipeline) Finalize(src string, startedAt, completedAt time.Time, lens *session.DevicePosition) (*session.Record, error) {
	if src == "" {
		return nil, errors.NewInvalidRequest("source path is required")
	}
	if lens != nil && !lens.Valid() {
		return nil, errors.NewInvalidRequest("devicePosition must be one of: front, back")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	if err := p.store.EnsureStorageReady(); err != nil {
		return nil, err
	}

	id := session.NewID(completedAt)
	dst := filepath.Join(p.store.SessionsDir(), session.MediaFileName(id))
	if err := copyFile(session.URIToPath(src), dst); err != nil {
		return nil, err
	}

	var durationMs *int64
	if !startedAt.IsZero() {
		d := completedAt.Sub(startedAt).Milliseconds()
		if d < 0 {
			d = 0
		}
		durationMs = &d
	}

	createdAt := completedAt.UnixMilli()
	return registry.Upsert(p.store, registry.UpsertInput{
		ID:             id,
		MediaPath:      &dst,
		CreatedAt:      &createdAt,
		DurationMs:     durationMs,
		DevicePosition: lens,
	})
}

// Transcribe runs the stub transcript producer for an existing session and
// attaches the resulting path. The second upsert carries only transcriptPath;
// mediaPath and createdAt were established by the first and stay untouched.
func (p *Pipeline) Transcribe(id string) (*session.Record, error) {
	rec, err := registry.Fetch(p.store, id)
	if err != nil {
		return nil, err
	}

	path, err := transcript.Produce(*rec)
	if err != nil {
		return nil, err
	}

	return registry.Upsert(p.store, registry.UpsertInput{
		ID:             rec.ID,
		TranscriptPath: &path,
	})
}

// copyFile durably copies src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(src)
		}
		return errors.NewStorageIO("open source file", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.NewStorageIO("create media file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return errors.NewStorageIO("copy media", err)
	}
	if err := out.Sync(); err != nil {
		return errors.NewStorageIO("sync media file", err)
	}
	return nil
}
