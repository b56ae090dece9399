package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/session"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // default: abort on id collision
	ImportModeReplace ImportMode = "replace" // overwrite existing records
	ImportModeSkip    ImportMode = "skip"    // keep existing records
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string
	Mode ImportMode
}

// ImportError describes one rejected line or record.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Replaced int           `json:"replaced"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// importLine wraps a record so the header line can be recognized and skipped.
type importLine struct {
	ReelExport bool `json:"_reel_export"`
	session.Record
}

// Import restores session records from a JSONL export file. Malformed lines
// are reported per-line; in mode error the first id collision aborts the
// whole import without touching the index.
func Import(store *index.Store, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	mode := input.Mode
	if mode == "" {
		mode = ImportModeError
	}
	if mode != ImportModeError && mode != ImportModeReplace && mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}

	if err := ValidatePath(input.Path, PathCheckRead, store, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.ReelError); ok {
			return nil, err
		}
		return nil, errors.NewStorageIO("open import file", err)
	}
	defer file.Close()

	incoming, parseErrors := parseExportFile(file)

	store.Lock()
	defer store.Unlock()

	records, err := store.Load()
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{Errors: parseErrors}
	for _, rec := range incoming {
		idx := findRecord(records, rec.ID)
		if idx < 0 {
			records = append(records, rec)
			out.Imported++
			continue
		}

		switch mode {
		case ImportModeError:
			out.Errors = append(out.Errors, ImportError{
				ID:      rec.ID,
				Code:    "ID_COLLISION",
				Message: fmt.Sprintf("session with id %q already exists", rec.ID),
			})
			// Abort without saving; the index is unchanged.
			out.Imported = 0
			return out, nil
		case ImportModeReplace:
			records[idx] = rec
			out.Replaced++
		case ImportModeSkip:
			out.Skipped++
		}
	}

	if out.Imported > 0 || out.Replaced > 0 {
		if err := store.Save(records); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseExportFile reads a JSONL export, validating each record line through
// the same rules as a first insert.
func parseExportFile(file io.Reader) ([]session.Record, []ImportError) {
	var records []session.Record
	var parseErrors []ImportError

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var parsed importLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if parsed.ReelExport {
			continue // header line
		}

		rec, err := newRecord(CreateInput{
			ID:             parsed.ID,
			MediaPath:      parsed.MediaPath,
			CreatedAt:      parsed.CreatedAt,
			DurationMs:     parsed.DurationMs,
			DevicePosition: parsed.DevicePosition,
			TranscriptPath: parsed.TranscriptPath,
		})
		if err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      parsed.ID,
				Code:    "INVALID_RECORD",
				Message: err.Error(),
			})
			continue
		}
		records = append(records, *rec)
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}
