package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mirrorhq/reel/internal/config"
	"github.com/mirrorhq/reel/internal/index"
	"github.com/mirrorhq/reel/internal/pipeline"
)

// NewServer creates and configures the HTTP server for the Reel API.
func NewServer(store *index.Store, cfg *config.Config, pipe *pipeline.Pipeline, version, bind string, port int) *http.Server {
	h := &Handlers{
		store:   store,
		cfg:     cfg,
		pipe:    pipe,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("POST /v1/sessions/start", h.HandleStart)
	mux.HandleFunc("POST /v1/sessions/{id}/upload-chunk", h.HandleChunk)
	mux.HandleFunc("POST /v1/sessions/{id}/finalize", h.HandleFinalize)
	mux.HandleFunc("POST /v1/sessions/{id}/transcript", h.HandleTranscript)
	mux.HandleFunc("GET /v1/sessions", h.HandleList)
	mux.HandleFunc("GET /v1/sessions/{id}", h.HandleFetch)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.HandleRemove)

	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Reel API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
