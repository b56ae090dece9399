package web

import (
	"encoding/json"
	"net/http"

	"github.com/mirrorhq/reel/internal/errors"
)

// renderJSON writes v as a JSON response with the given status.
func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// renderError maps a ReelError to its HTTP status and a structured error
// body. Internal error details are not exposed to avoid leaking paths.
func renderError(w http.ResponseWriter, err error) {
	rErr, ok := err.(*errors.ReelError)
	if !ok {
		rErr = errors.NewInternal(nil)
	}

	errorObj := map[string]any{
		"code":    rErr.Code,
		"message": rErr.Message,
		"status":  rErr.Status,
	}
	if rErr.Code != errors.ErrInternal && rErr.Code != errors.ErrStorageIO && rErr.Details != nil {
		errorObj["details"] = rErr.Details
	}

	renderJSON(w, rErr.Status, map[string]any{"error": errorObj})
}
