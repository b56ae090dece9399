package errors

import "fmt"

// ErrorCode represents a Reel error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrStorageIO      ErrorCode = "STORAGE_IO"      // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ReelError represents a structured error with code, status, and details.
type ReelError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ReelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ReelError {
	return &ReelError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session cannot be found.
func NewNotFound(id string) *ReelError {
	return &ReelError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("session not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing file path.
func NewFileNotFound(path string) *ReelError {
	return &ReelError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for collisions and mismatches.
func NewConflict(msg string) *ReelError {
	return &ReelError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewStorageIO creates a 500 error for filesystem failures. The op names the
// failed operation (e.g. "copy media", "write index").
func NewStorageIO(op string, err error) *ReelError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &ReelError{
		Code:    ErrStorageIO,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ReelError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ReelError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ReelError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*ReelError); ok {
		return rErr.Code == code
	}
	return false
}
