package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService parks in Start until Stop is called, like the HTTP
// listener does.
type blockingService struct {
	name    string
	started atomic.Bool
	stops   *stopRecorder
	release chan struct{}
	once    sync.Once
}

type stopRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *stopRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func newBlockingService(name string, stops *stopRecorder) *blockingService {
	return &blockingService{name: name, stops: stops, release: make(chan struct{})}
}

func (s *blockingService) Start() error {
	s.started.Store(true)
	<-s.release
	return nil
}

func (s *blockingService) Stop() {
	s.stops.record(s.name)
	s.once.Do(func() { close(s.release) })
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	stops := &stopRecorder{}
	api := newBlockingService("api", stops)
	poller := newBlockingService("poller", stops)

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("api", api)
	lc.Add("poller", poller)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return api.started.Load() && poller.started.Load()
	}, 2*time.Second, 10*time.Millisecond, "services did not start")

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}

	assert.Equal(t, []string{"poller", "api"}, stops.order)
}

func TestLifecycle_ServiceFailureTriggersShutdown(t *testing.T) {
	stops := &stopRecorder{}
	healthy := newBlockingService("healthy", stops)

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("healthy", healthy)
	lc.Add("broken", &failingService{err: errors.New("bind: address already in use")})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after service failure")
	}

	assert.Contains(t, stops.order, "healthy")
}

type failingService struct {
	err error
}

func (s *failingService) Start() error { return s.err }
func (s *failingService) Stop()        {}
