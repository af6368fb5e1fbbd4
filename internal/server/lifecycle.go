// Package server runs the long-lived pieces of the application and
// shuts them down cleanly on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component, such as the HTTP listener.
type Service interface {
	// Start blocks until the service stops or fails.
	Start() error
	// Stop asks the service to shut down gracefully.
	Stop()
}

// Lifecycle owns a set of named services. Run starts them all and
// stops them in reverse registration order once a termination signal
// arrives or any service fails.
type Lifecycle struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []lifecycleEntry
}

type lifecycleEntry struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a service under a name used in log output.
// Registration order determines start order; shutdown runs in reverse.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, lifecycleEntry{name: name, svc: svc})
}

// Run starts every registered service and blocks until SIGINT or
// SIGTERM is received, the context is cancelled, or a service returns
// an error. It then stops all services in reverse order.
//
// Postcondition: every registered service has had Stop called when
// Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	started := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.entries))
	for _, e := range l.entries {
		e := e
		go func() {
			l.logger.Info("service starting", zap.String("name", e.name))
			if err := e.svc.Start(); err != nil {
				l.logger.Error("service exited with error",
					zap.String("name", e.name),
					zap.Error(err),
				)
				failures <- fmt.Errorf("%s: %w", e.name, err)
				cancel()
			}
		}()
	}
	l.logger.Info("running", zap.Int("services", len(l.entries)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		l.logger.Info("signal received", zap.String("signal", sig.String()))
	case err := <-failures:
		l.logger.Error("stopping after service failure", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("context cancelled")
	}

	l.stopAll()
	l.logger.Info("stopped", zap.Duration("uptime", time.Since(started)))
	return nil
}

func (l *Lifecycle) stopAll() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		l.logger.Info("service stopping", zap.String("name", e.name))
		e.svc.Stop()
	}
}
