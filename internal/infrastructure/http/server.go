// Package http provides the HTTP server infrastructure.
// Framework/driver layer: the query API, image files and the dashboard.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	"github.com/0xcro3dile/snapsolve/internal/metrics"
	"github.com/0xcro3dile/snapsolve/internal/textfmt"
)

//go:embed static/*
var staticFS embed.FS

// Liveness is the body of GET /.
const Liveness = "Server is up and running."

// Server is the HTTP server for the entries API and dashboard.
type Server struct {
	entries   *usecases.EntriesUseCase
	imagesDir string
	addr      string
	metrics   *metrics.Metrics
	changes   <-chan ports.FileEvent
	hub       *hub
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithChanges pushes an entries_changed event to dashboards for every
// change reported on events.
func WithChanges(events <-chan ports.FileEvent) ServerOption {
	return func(s *Server) { s.changes = events }
}

// NewServer creates a new HTTP server.
func NewServer(entries *usecases.EntriesUseCase, imagesDir, addr string, opts ...ServerOption) *Server {
	s := &Server{
		entries:   entries,
		imagesDir: imagesDir,
		addr:      addr,
		hub:       newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Dashboard
	staticContent, _ := fs.Sub(staticFS, "static")
	mux.Handle("/dashboard/", http.StripPrefix("/dashboard/", http.FileServer(http.FS(staticContent))))

	// API
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /entries", s.handleEntries)
	mux.HandleFunc("GET /entries/{timestamp}", s.handleEntry)
	mux.HandleFunc("GET /images/{filename}", s.handleImage)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/events streams for as long as the dashboard is open.
	}

	if s.changes != nil {
		go s.Forward(ctx, s.changes)
	}

	log.Printf("[INFO] snapsolve server starting on %s", s.addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Printf("[INFO] snapsolve server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Forward turns file events into dashboard notifications until events
// closes or ctx is done.
func (s *Server) Forward(ctx context.Context, events <-chan ports.FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Printf("[DEBUG] entries document changed: %s", ev.Path)
			s.hub.publish(changeEvent{Type: "entries_changed"})
		}
	}
}

// handleRoot is the plaintext liveness check.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(Liveness))
}

// handleEntries returns the stored list in document order.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.All(r.Context())
	if err != nil {
		log.Printf("[ERROR] loading entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load entries"})
		return
	}
	if s.metrics != nil {
		s.metrics.SetEntriesStored(len(entries))
	}
	writeJSON(w, http.StatusOK, entries)
}

type sectionView struct {
	entities.Section
	Blocks []textfmt.Block `json:"blocks"`
}

type entryView struct {
	Entry    entities.Entry `json:"entry"`
	Sections []sectionView  `json:"sections"`
}

// handleEntry returns one entry with its sections pre-formatted for display.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	ts, err := strconv.ParseInt(r.PathValue("timestamp"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid timestamp"})
		return
	}

	entry, ok, err := s.entries.Find(r.Context(), ts, r.URL.Query().Get("screenshot"))
	if err != nil {
		log.Printf("[ERROR] loading entries: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load entries"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Entry not found"})
		return
	}

	view := entryView{Entry: entry}
	for _, sec := range entry.Sections() {
		blocks := textfmt.Parse(sec.Text)
		if blocks == nil {
			blocks = []textfmt.Block{}
		}
		view.Sections = append(view.Sections, sectionView{Section: sec, Blocks: blocks})
	}
	writeJSON(w, http.StatusOK, view)
}

// handleImage serves a captured screenshot. Directories are never listed.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(s.imagesDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encoding response: %v", err)
	}
}

// statusRecorder captures the response status for logs and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, elapsed)

		if s.metrics != nil {
			// r.Pattern keeps label cardinality bounded.
			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			s.metrics.RecordHTTPRequest(r.Method, pattern, rec.status, elapsed)
		}
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
