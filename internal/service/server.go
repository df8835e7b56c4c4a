package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wrapper del server HTTP con arresto pulito
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer crea il server
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{httpServer: s, logger: logger}
}

// Start avvia il server (bloccante)
func (s *Server) Start() error {
	s.logger.Info("Starting elena-backend HTTP server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Stop arresta il server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping elena-backend HTTP server")
	return s.httpServer.Shutdown(ctx)
}
