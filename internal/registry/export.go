package registry

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <base>/exports/sessions-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the header line in a JSONL export file.
type ExportHeader struct {
	ReelExport    bool   `json:"_reel_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes the session index to a JSONL file: one header line followed
// by one record per line. The media files themselves are not copied.
func Export(store *index.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(store.ExportsDir(), fmt.Sprintf("sessions-%s.jsonl", now.Format("2006-01-02T150405")))
	}

	// Validate ALL paths (both user-provided and default) for safety.
	if err := ValidatePath(exportPath, PathCheckWrite, store, cfg); err != nil {
		return nil, err
	}

	if err := store.EnsureStorageReady(); err != nil {
		return nil, err
	}

	store.Lock()
	records, err := store.Load()
	store.Unlock()
	if err != nil {
		return nil, err
	}

	// Write to temp file first, then atomic rename to preserve any existing
	// file on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.NewStorageIO("create export file", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	header := ExportHeader{
		ReelExport:    true,
		SchemaVersion: "1.0",
		ExportedAt:    exportedAt,
	}
	if err := writeJSONLine(file, header); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := writeJSONLine(file, rec); err != nil {
			return nil, err
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewStorageIO("sync export file", err)
	}
	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewStorageIO("close export file", err)
	}
	file = nil

	// os.Rename would follow a symlink destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewStorageIO("finalize export", err)
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(records),
		ExportedAt: exportedAt,
	}, nil
}

func writeJSONLine(file *os.File, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return errors.NewStorageIO("write export file", err)
	}
	return nil
}
