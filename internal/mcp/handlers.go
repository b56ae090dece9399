package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/pipeline"
	"github.com/mirrorhq/reel/internal/registry"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *index.Store
	cfg   *config.Config
	pipe  *pipeline.Pipeline
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *index.Store, cfg *config.Config, pipe *pipeline.Pipeline) *Handlers {
	return &Handlers{store: store, cfg: cfg, pipe: pipe}
}

// Request types for each tool

// FetchRequest represents the arguments for session_fetch.
type FetchRequest struct {
	ID string `json:"id"`
}

// RemoveRequest represents the arguments for session_remove.
type RemoveRequest struct {
	ID string `json:"id"`
}

// TranscribeRequest represents the arguments for session_transcribe.
type TranscribeRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for session_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for session_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleList handles the session_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := registry.List(h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the session_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := registry.Fetch(h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRemove handles the session_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := registry.Remove(h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTranscribe handles the session_transcribe tool call.
func (h *Handlers) HandleTranscribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TranscribeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.pipe.Transcribe(input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the session_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := registry.Export(h.store, h.cfg, registry.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the session_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := registry.Import(h.store, h.cfg, registry.ImportInput{
		Path: input.Path,
		Mode: registry.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error into an MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := err.(*errors.ReelError); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like filesystem paths
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult converts data into a JSON MCP result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
