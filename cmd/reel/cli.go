package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/errors"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/pipeline"
	"github.com/mirrorhq/reel/internal/registry"
	"github.com/mirrorhq/reel/internal/session"
	"github.com/mirrorhq/reel/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *index.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "reel",
		Usage:   "Session registry for recorded clips",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(store, cfg),
			listCmd(store),
			showCmd(store),
			removeCmd(store),
			transcribeCmd(store, cfg),
			exportCmd(store, cfg),
			importCmd(store, cfg),
			serveCmd(store, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// ingestCmd creates the ingest command.
func ingestCmd(store *index.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Record a finished recording: copy the media into storage and index it",
		ArgsUsage: "<media-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "started-at", Usage: "Recording start time (RFC 3339)"},
			&cli.StringFlag{Name: "completed-at", Usage: "Recording end time (RFC 3339, default: now)"},
			&cli.StringFlag{Name: "lens", Aliases: []string{"l"}, Usage: "Camera position: front|back"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("media file path is required"))
			}
			src := c.Args().First()

			var startedAt, completedAt time.Time
			if s := c.String("started-at"); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid started-at: %v", err)))
				}
				startedAt = t
			}
			if s := c.String("completed-at"); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid completed-at: %v", err)))
				}
				completedAt = t
			}

			var lens *session.DevicePosition
			if s := c.String("lens"); s != "" {
				p := session.DevicePosition(s)
				lens = &p
			}

			pipe := pipeline.New(store, cfg)
			output, err := pipe.Finalize(src, startedAt, completedAt, lens)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(store *index.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all sessions, newest first (reconciled against disk)",
		Action: func(c *cli.Context) error {
			output, err := registry.List(store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(store *index.Store) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one session by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := registry.Fetch(store, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(store *index.Store) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a session's index entry (media file stays on disk)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := registry.Remove(store, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// transcribeCmd creates the transcribe command.
func transcribeCmd(store *index.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "transcribe",
		Usage:     "Produce a transcript side file for a session",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			pipe := pipeline.New(store, cfg)
			output, err := pipe.Transcribe(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(store *index.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export session records to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.reel/exports/sessions-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := registry.Export(store, cfg, registry.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(store *index.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import session records from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := registry.Import(store, cfg, registry.ImportInput{
				Path: c.String("path"),
				Mode: registry.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(store *index.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API for the capture client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			pipe := pipeline.New(store, cfg)
			srv := web.NewServer(store, cfg, pipe, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := err.(*errors.ReelError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
