package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/config"
)

// HTTPService adapts an http.Server to the Service interface with
// graceful shutdown.
type HTTPService struct {
	srv    *http.Server
	cfg    config.HTTPConfig
	logger *zap.Logger
}

// NewHTTPService wraps handler in a managed HTTP server configured by
// cfg.
//
// Precondition: cfg must be validated; handler and logger must be
// non-nil.
func NewHTTPService(cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves until Stop is called.
//
// Postcondition: Returns nil on graceful shutdown, the listener error
// otherwise.
func (s *HTTPService) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop drains in-flight requests within the shutdown timeout, then
// closes remaining connections.
func (s *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("forcing http server close", zap.Error(err))
		_ = s.srv.Close()
	}
}
