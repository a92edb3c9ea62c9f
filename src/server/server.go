// Package server exposes the session shell over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/elee1766/moviefinder/src/session"
)

const (
	// SessionHeader may carry the session id instead of the request body.
	SessionHeader = "X-Session-ID"

	msgRunning = "Movies Finder API is running!"
	msgReset   = "Session reset successfully."

	maxBodyBytes = 1 << 20
)

// Chatter is the session shell as seen by the transport.
type Chatter interface {
	Handle(ctx context.Context, sessionID, query string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

// Observer receives one observation per HTTP request.
type Observer interface {
	ObserveHTTP(route string, code int, d time.Duration)
}

// Config configures the HTTP server.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	Chatter        Chatter
	Observer       Observer
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ResetRequest is the optional body of POST /reset.
type ResetRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// MessageResponse carries a status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a request error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *mux.Router
	http   *http.Server
}

// New builds a Server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Chatter == nil {
		return nil, errors.New("server: chatter is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// leave room for the 504 after a request timeout
		cfg.WriteTimeout = cfg.RequestTimeout + 15*time.Second
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "http_server"),
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/", s.handleRoot).Methods("GET")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/chat", s.handleChat).Methods("POST")
	router.HandleFunc("/reset", s.handleReset).Methods("POST")
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods("GET")
	}
	s.router = router

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgRunning})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: session.ErrEmptyQuery.Error()})
		return
	}
	sid := session.NormalizeID(firstNonEmpty(req.SessionID, r.Header.Get(SessionHeader)))

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	answer, err := s.cfg.Chatter.Handle(ctx, sid, req.Query)
	if err != nil {
		s.writeChatterError(w, err, sid)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: answer, SessionID: sid})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sid := session.NormalizeID(firstNonEmpty(req.SessionID, r.Header.Get(SessionHeader)))

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	if err := s.cfg.Chatter.Reset(ctx, sid); err != nil {
		s.writeChatterError(w, err, sid)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgReset})
}

func (s *Server) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.RequestTimeout)
	}
	return context.WithCancel(parent)
}

func (s *Server) writeChatterError(w http.ResponseWriter, err error, sid string) {
	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request timed out", "session_id", sid)
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"})
	case errors.Is(err, context.Canceled):
		// client went away; nobody is listening
		w.WriteHeader(499)
	case errors.Is(err, session.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "session_id", sid, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// decodeBody decodes an optional JSON body.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
