package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/pipeline"
	"github.com/mirrorhq/reel/internal/registry"
	"github.com/mirrorhq/reel/internal/session"
)

func setupTest(t *testing.T) (http.Handler, *index.Store) {
	t.Helper()
	store := index.New(t.TempDir())
	if err := store.EnsureStorageReady(); err != nil {
		t.Fatalf("EnsureStorageReady: %v", err)
	}
	cfg := config.DefaultConfig()
	srv := NewServer(store, cfg, pipeline.New(store, cfg), "test", "127.0.0.1", 0)
	return srv.Handler, store
}

// seedSession indexes a session with a real media file and returns its id.
func seedSession(t *testing.T, store *index.Store, id string) string {
	t.Helper()
	path := filepath.Join(store.SessionsDir(), session.MediaFileName(id))
	if err := os.WriteFile(path, []byte("clip"), 0o600); err != nil {
		t.Fatalf("write media: %v", err)
	}
	if _, err := registry.Create(store, registry.CreateInput{ID: id, MediaPath: path, CreatedAt: 1000}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if b, ok := body.([]byte); ok {
		reader = bytes.NewReader(b)
	} else if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	mux, _ := setupTest(t)

	w := doJSON(t, mux, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field = %v, want test", body["version"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	mux, _ := setupTest(t)

	w := doJSON(t, mux, http.MethodGet, "/health", nil, nil)
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestUploadFlow(t *testing.T) {
	mux, _ := setupTest(t)

	// Start
	w := doJSON(t, mux, http.MethodPost, "/v1/sessions/start", map[string]any{
		"filename": "20250904_123456_session.mp4",
		"size":     9,
		"mime":     "video/mp4",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	var start struct {
		SessionID string `json:"session_id"`
		UploadID  string `json:"upload_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &start); err != nil {
		t.Fatalf("unmarshal start: %v", err)
	}
	if start.SessionID == "" || start.UploadID == "" {
		t.Fatal("start response missing ids")
	}

	// Two chunks
	hdr := map[string]string{"Upload-Id": start.UploadID}
	w = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+start.SessionID+"/upload-chunk", []byte("hello"), hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("chunk status = %d, body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+start.SessionID+"/upload-chunk", []byte("clip"), hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("chunk status = %d, body %s", w.Code, w.Body.String())
	}
	var chunk struct {
		OK            bool  `json:"ok"`
		BytesReceived int64 `json:"bytes_received"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &chunk); err != nil {
		t.Fatalf("unmarshal chunk: %v", err)
	}
	if !chunk.OK || chunk.BytesReceived != 9 {
		t.Errorf("chunk = %+v, want ok with 9 bytes", chunk)
	}

	// Finalize
	w = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+start.SessionID+"/finalize", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize status = %d, body %s", w.Code, w.Body.String())
	}
	var fin struct {
		FinalPath string          `json:"final_path"`
		Size      int64           `json:"size"`
		Record    *session.Record `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fin); err != nil {
		t.Fatalf("unmarshal finalize: %v", err)
	}
	if fin.Size != 9 {
		t.Errorf("Size = %d, want 9", fin.Size)
	}
	if fin.Record == nil || fin.Record.ID != "20250904_123456" {
		t.Errorf("Record = %v, want filename-derived id", fin.Record)
	}

	data, err := os.ReadFile(fin.FinalPath)
	if err != nil {
		t.Fatalf("read final media: %v", err)
	}
	if string(data) != "helloclip" {
		t.Errorf("final media = %q, want assembled chunks", data)
	}

	// List sees the session
	w = doJSON(t, mux, http.MethodGet, "/v1/sessions", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "20250904_123456") {
		t.Errorf("list body missing session: %s", w.Body.String())
	}
}

func TestUploadChunk_WrongUploadID(t *testing.T) {
	mux, _ := setupTest(t)

	w := doJSON(t, mux, http.MethodPost, "/v1/sessions/start", map[string]any{"filename": "a_session.mp4"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d", w.Code)
	}
	var start struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &start); err != nil {
		t.Fatalf("unmarshal start: %v", err)
	}

	w = doJSON(t, mux, http.MethodPost, "/v1/sessions/"+start.SessionID+"/upload-chunk", []byte("x"),
		map[string]string{"Upload-Id": "WRONG"})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), "CONFLICT") {
		t.Errorf("body = %s, want CONFLICT code", w.Body.String())
	}
}

func TestFetch_NotFound(t *testing.T) {
	mux, _ := setupTest(t)

	w := doJSON(t, mux, http.MethodGet, "/v1/sessions/20990101_000000", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NOT_FOUND") {
		t.Errorf("body = %s, want NOT_FOUND code", w.Body.String())
	}
}

func TestFetch_ReturnsRecord(t *testing.T) {
	mux, store := setupTest(t)
	id := seedSession(t, store, "20250904_123456")

	w := doJSON(t, mux, http.MethodGet, "/v1/sessions/"+id, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var rec session.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != id {
		t.Errorf("ID = %q, want %q", rec.ID, id)
	}
}

func TestRemove_Endpoint(t *testing.T) {
	mux, store := setupTest(t)
	id := seedSession(t, store, "20250904_123456")

	w := doJSON(t, mux, http.MethodDelete, "/v1/sessions/"+id, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var out struct {
		Removed bool `json:"removed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Removed {
		t.Error("Removed = false, want true")
	}
}

func TestTranscript_Endpoint(t *testing.T) {
	mux, store := setupTest(t)
	id := seedSession(t, store, "20250904_123456")

	w := doJSON(t, mux, http.MethodPost, "/v1/sessions/"+id+"/transcript", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var rec session.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.TranscriptPath == nil {
		t.Fatal("TranscriptPath = nil, want set")
	}
	if _, err := os.Stat(session.URIToPath(*rec.TranscriptPath)); err != nil {
		t.Errorf("transcript file missing: %v", err)
	}
}

func TestStart_InvalidBody(t *testing.T) {
	mux, _ := setupTest(t)

	w := doJSON(t, mux, http.MethodPost, "/v1/sessions/start", []byte("{not json"), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
