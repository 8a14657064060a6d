// Package server exposes the session registry over HTTP and streams game
// events over WebSocket.
package server

import (
	"context"
	"net/http"

	"github.com/gavvahar/Monopoly-Deal/internal/config"
	"github.com/gavvahar/Monopoly-Deal/internal/repository"
	"github.com/gavvahar/Monopoly-Deal/internal/session"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Server is the HTTP gateway.
type Server struct {
	cfg       config.ServerConfig
	sessions  *session.Manager
	snapshots *repository.SnapshotRepository
	router    *httprouter.Router
	http      *http.Server
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// New builds the gateway with its routes registered.
func New(cfg config.ServerConfig, sessions *session.Manager, snapshots *repository.SnapshotRepository, logger *zap.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		snapshots: snapshots,
		router:    httprouter.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/v1/sessions", s.handleListSessions)
	s.router.POST("/v1/sessions", s.handleCreateSession)
	s.router.GET("/v1/sessions/:id", s.handleGetSession)
	s.router.POST("/v1/sessions/:id/join", s.handleJoin)
	s.router.POST("/v1/sessions/:id/leave", s.handleLeave)
	s.router.POST("/v1/sessions/:id/start", s.handleStart)
	s.router.POST("/v1/sessions/:id/actions", s.handleAction)
	s.router.GET("/v1/sessions/:id/view", s.handleView)
	s.router.GET("/v1/sessions/:id/events", s.handleEvents)

	s.http = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.router,
	}
	return s
}

// Run serves until the context is cancelled, then drains connections within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr()))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
