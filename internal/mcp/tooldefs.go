package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var listToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List all recorded sessions, newest first. Reconciles the index against the media files on disk before returning."),
)

var fetchToolDef = mcp.NewTool("session_fetch",
	mcp.WithDescription("Fetch a single session record by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id, e.g. 20250904_123456"),
	),
)

var removeToolDef = mcp.NewTool("session_remove",
	mcp.WithDescription("Remove a session's index entry. The media file on disk is not deleted."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id to remove"),
	),
)

var transcribeToolDef = mcp.NewTool("session_transcribe",
	mcp.WithDescription("Produce a transcript side file for a session and attach its path to the record."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id to transcribe"),
	),
)

var exportToolDef = mcp.NewTool("session_export",
	mcp.WithDescription("Export all session records to a JSONL file."),
	mcp.WithString("path",
		mcp.Description("Destination .jsonl path. Defaults to a timestamped file in the exports directory."),
	),
)

var importToolDef = mcp.NewTool("session_import",
	mcp.WithDescription("Import session records from a JSONL export file."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Source .jsonl path"),
	),
	mcp.WithString("mode",
		mcp.Description("Collision handling: error (default), replace, or skip"),
		mcp.Enum("error", "replace", "skip"),
	),
)
