// Package api serves session status and canvas exports over HTTP.
// GET endpoints observe; POST endpoints queue work for the next frame.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"

	"github.com/pthm-cable/drift/game"
)

// Backend is the session surface the API needs. Every method must be safe
// to call from HTTP goroutines.
type Backend interface {
	Status() game.Status
	RequestExport()
	RequestClear()
	LatestExport() (*game.Export, bool)
}

// Server serves the session over HTTP.
type Server struct {
	backend        Backend
	addr           string
	allowedOrigins []string

	srv *http.Server
	ln  net.Listener
}

// NewServer creates a server for backend listening on addr.
func NewServer(addr string, allowedOrigins []string, backend Backend) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{backend: backend, addr: addr, allowedOrigins: allowedOrigins}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/export/latest", s.handleLatestExport)
	mux.HandleFunc("/api/v1/export", s.handleExport)
	mux.HandleFunc("/api/v1/clear", s.handleClear)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Export-Id", "Content-Disposition"},
		AllowCredentials: false,
	})
	return c.Handler(mux)
}

// Start listens on the configured address and serves in a goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	slog.Info("HTTP API starting", "addr", ln.Addr().String(), "origins", s.allowedOrigins)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.backend.Status())
}

func (s *Server) handleLatestExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	exp, ok := s.backend.LatestExport()
	if !ok {
		writeError(w, http.StatusNotFound, "no export yet")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename()))
	w.Header().Set("X-Export-Id", exp.ID.String())
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s.backend.RequestExport()
	slog.Info("export requested over HTTP", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "requested",
		"frame":  s.backend.Status().Frame,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s.backend.RequestClear()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "requested",
		"frame":  s.backend.Status().Frame,
	})
}

// allowMethod rejects requests with any other method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
