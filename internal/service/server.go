package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP listener with logged start and stop.
type Server struct {
	name   string
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr, name string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		name: name,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("service", s.name),
		zap.String("addr", s.srv.Addr),
	)
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server", zap.String("service", s.name))
	return s.srv.Shutdown(ctx)
}
