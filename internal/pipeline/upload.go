package pipeline

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/registry"
	"github.com/mirrorhq/reel/internal/session"
)

// upload tracks one in-flight chunked upload. Entries live in memory; only a
// finalized recording reaches the index, so an interrupted upload leaves
// nothing behind but a part file in tmp/.
type upload struct {
	sessionID     string
	uploadID      string
	filename      string
	mime          string
	declaredSize  int64
	tmpPath       string
	bytesReceived int64
	startedAt     time.Time
}

// StartUploadInput contains parameters for StartUpload.
type StartUploadInput struct {
	Filename string // client's preferred final filename, e.g. 20250904_123456_session.mp4
	Size     int64  // total size in bytes if known
	Mime     string // e.g. video/mp4
}

// StartUploadOutput contains the result of StartUpload.
type StartUploadOutput struct {
	SessionID string `json:"session_id"`
	UploadID  string `json:"upload_id"`
	TmpPath   string `json:"tmp_path"`
}

// ChunkOutput contains the result of AppendChunk.
type ChunkOutput struct {
	OK            bool  `json:"ok"`
	BytesReceived int64 `json:"bytes_received"`
}

// FinalizeUploadOutput contains the result of FinalizeUpload.
type FinalizeUploadOutput struct {
	Record    *session.Record `json:"record"`
	FinalPath string          `json:"final_path"`
	Size      int64           `json:"size"`
}

// StartUpload opens a new upload session: an empty part file in tmp/ plus a
// session/upload id pair the client echoes back on every chunk.
func (p *Pipeline) StartUpload(input StartUploadInput) (*StartUploadOutput, error) {
	if input.Filename == "" {
		return nil, errors.NewInvalidRequest("filename is required")
	}
	if strings.ContainsAny(input.Filename, `/\`) || strings.Contains(input.Filename, "..") {
		return nil, errors.NewInvalidRequest("filename must not contain path separators or traversal")
	}

	if err := p.store.EnsureStorageReady(); err != nil {
		return nil, err
	}

	sessionID, err := newULID()
	if err != nil {
		return nil, err
	}
	uploadID, err := newULID()
	if err != nil {
		return nil, err
	}

	tmpPath := filepath.Join(p.store.TmpDir(), sessionID+".part")
	if err := os.WriteFile(tmpPath, nil, 0o600); err != nil {
		return nil, errors.NewStorageIO("create part file", err)
	}

	p.mu.Lock()
	p.uploads[sessionID] = &upload{
		sessionID:    sessionID,
		uploadID:     uploadID,
		filename:     input.Filename,
		mime:         input.Mime,
		declaredSize: input.Size,
		tmpPath:      tmpPath,
		startedAt:    time.Now(),
	}
	p.mu.Unlock()

	return &StartUploadOutput{
		SessionID: sessionID,
		UploadID:  uploadID,
		TmpPath:   tmpPath,
	}, nil
}

// AppendChunk appends raw bytes to an upload's part file. When the client
// supplies an upload id it must match the one issued at start.
func (p *Pipeline) AppendChunk(sessionID, uploadID string, data []byte) (*ChunkOutput, error) {
	if p.cfg != nil && p.cfg.MaxChunkBytes > 0 && int64(len(data)) > p.cfg.MaxChunkBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("chunk exceeds maximum size of %d bytes", p.cfg.MaxChunkBytes))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.uploads[sessionID]
	if !ok {
		return nil, errors.NewNotFound(sessionID)
	}
	if uploadID != "" && uploadID != u.uploadID {
		return nil, errors.NewConflict("upload_id mismatch")
	}

	f, err := os.OpenFile(u.tmpPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.NewStorageIO("open part file", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, errors.NewStorageIO("append chunk", err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.NewStorageIO("close part file", err)
	}

	info, err := os.Stat(u.tmpPath)
	if err != nil {
		return nil, errors.NewStorageIO("stat part file", err)
	}
	u.bytesReceived = info.Size()

	return &ChunkOutput{OK: true, BytesReceived: u.bytesReceived}, nil
}

// FinalizeUpload moves the part file into the sessions directory under the
// client's filename (de-duplicating a name collision with the upload session
// id) and upserts the session record. The move happens before the upsert so
// the index never points at tmp/.
func (p *Pipeline) FinalizeUpload(sessionID string) (*FinalizeUploadOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.uploads[sessionID]
	if !ok {
		return nil, errors.NewNotFound(sessionID)
	}
	if _, err := os.Stat(u.tmpPath); err != nil {
		return nil, errors.NewInvalidRequest("no part file to finalize")
	}

	finalName := u.filename
	if finalName == "" {
		finalName = sessionID + ".mp4"
	}
	finalPath := filepath.Join(p.store.SessionsDir(), finalName)
	if _, err := os.Stat(finalPath); err == nil {
		ext := filepath.Ext(finalName)
		stem := strings.TrimSuffix(finalName, ext)
		finalPath = filepath.Join(p.store.SessionsDir(), fmt.Sprintf("%s_%s%s", stem, sessionID, ext))
	}

	if err := os.Rename(u.tmpPath, finalPath); err != nil {
		return nil, errors.NewStorageIO("finalize part file", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, errors.NewStorageIO("stat media file", err)
	}

	createdAt := time.Now().UnixMilli()
	rec, err := registry.Upsert(p.store, registry.UpsertInput{
		ID:        session.IDFromMediaFile(finalPath),
		MediaPath: &finalPath,
		CreatedAt: &createdAt,
	})
	if err != nil {
		return nil, err
	}

	delete(p.uploads, sessionID)
	return &FinalizeUploadOutput{
		Record:    rec,
		FinalPath: finalPath,
		Size:      info.Size(),
	}, nil
}

// newULID generates a new ULID.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}
