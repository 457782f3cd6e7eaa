// Package server exposes the assistant's reply contract over HTTP and websockets.
package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// UserHeader carries the authenticated user id when the body does not.
const UserHeader = "X-Spice-User"

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 64 << 10
	wsReadTimeout   = 5 * time.Minute
)

// Replier produces one reply per user utterance.
type Replier interface {
	Reply(ctx context.Context, user, text string) model.Reply
}

// Server routes chat requests to a Replier.
type Server struct {
	replier   Replier
	logger    *slog.Logger
	tlsConfig *tls.Config
	upgrader  websocket.Upgrader
}

// New creates a Server.
func New(replier Replier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		replier: replier,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// EnableTLS makes Run serve HTTPS with cfg.
func (s *Server) EnableTLS(cfg *tls.Config) {
	s.tlsConfig = cfg
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", s.handleChat)
		api.Get("/ws", s.handleWebSocket)
	})

	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.tlsConfig,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr, "tls", s.tlsConfig != nil)
		if s.tlsConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

type chatRequest struct {
	User    string `json:"user,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, model.ErrorReply("invalid request body"))
		return
	}

	user := userFrom(r, req.User)
	reply := s.replier.Reply(r.Context(), user, req.Message)

	status := http.StatusOK
	if user == "" {
		status = http.StatusUnauthorized
	}
	respondJSON(w, status, reply)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r, r.URL.Query().Get("user"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug("websocket connected", "user", user)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "user", user, "error", err)
			}
			return
		}

		reply := s.replier.Reply(r.Context(), user, req.Message)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("websocket write failed", "user", user, "error", err)
			return
		}
	}
}

// logRequests logs each request through slog once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// userFrom prefers the header over the given fallback.
func userFrom(r *http.Request, fallback string) string {
	if user := strings.TrimSpace(r.Header.Get(UserHeader)); user != "" {
		return user
	}
	return strings.TrimSpace(fallback)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
