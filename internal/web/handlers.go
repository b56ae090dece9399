package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/pipeline"
	"github.com/mirrorhq/reel/internal/registry"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store   *index.Store
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	version string
}

// HandleHealth responds to liveness probes.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
	})
}

type startRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Mime     string `json:"mime"`
}

// HandleStart opens a new chunked upload session.
func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	out, err := h.pipe.StartUpload(pipeline.StartUploadInput{
		Filename: req.Filename,
		Size:     req.Size,
		Mime:     req.Mime,
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleChunk appends one raw-body chunk to an in-flight upload. The client
// echoes the upload id from start in the Upload-Id header.
func (h *Handlers) HandleChunk(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	uploadID := r.Header.Get("Upload-Id")

	var limit int64 = config.DefaultMaxChunkBytes
	if h.cfg != nil && h.cfg.MaxChunkBytes > 0 {
		limit = h.cfg.MaxChunkBytes
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		renderError(w, errors.NewInvalidRequest("chunk body too large or unreadable"))
		return
	}

	out, err := h.pipe.AppendChunk(sessionID, uploadID, data)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleFinalize moves an upload's part file into the sessions directory and
// records the session.
func (h *Handlers) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	out, err := h.pipe.FinalizeUpload(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleTranscript runs the transcript producer for a session.
func (h *Handlers) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	rec, err := h.pipe.Transcribe(r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, rec)
}

// HandleList returns all sessions, newest first, reconciled against disk.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := registry.List(h.store)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleFetch returns a single session by id.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	rec, err := registry.Fetch(h.store, r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, rec)
}

// HandleRemove deletes a session's index entry. The media file stays on disk.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	out, err := registry.Remove(h.store, r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}
