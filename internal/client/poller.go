package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// Poller periodically refreshes one session and hands each newer
// snapshot to a callback.
//
// Polls are independent requests and are not cancelled when they
// overlap, so a slow response can arrive after a faster, newer one.
// Every request is numbered before it is sent and a response is dropped
// unless its number beats the last delivered one: last response wins by
// issue order, never by arrival order.
type Poller struct {
	store    Store
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	nextSeq uint64

	// deliverMu serialises delivery so a stale response can never slip
	// in behind a newer one mid-callback.
	deliverMu sync.Mutex
	delivered uint64
}

// NewPoller creates a Poller refreshing at the given interval.
//
// Precondition: interval must be positive.
func NewPoller(store Store, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{store: store, interval: interval, logger: logger}
}

// Run polls the session until ctx is cancelled, invoking onUpdate for
// every snapshot that is newer than the last delivered one. An immediate
// first poll precedes the ticker. Blocks until ctx is done.
func (p *Poller) Run(ctx context.Context, sessionID string, onUpdate func(*session.Session)) {
	p.poll(ctx, sessionID, onUpdate)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.poll(ctx, sessionID, onUpdate)
		}
	}
}

func (p *Poller) poll(ctx context.Context, sessionID string, onUpdate func(*session.Session)) {
	p.mu.Lock()
	p.nextSeq++
	seq := p.nextSeq
	p.mu.Unlock()

	sess, err := p.store.GetSession(ctx, sessionID)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("session poll failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		return
	}

	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	if seq <= p.delivered {
		p.logger.Debug("dropping stale poll response",
			zap.String("session_id", sessionID),
			zap.Uint64("seq", seq),
		)
		return
	}
	p.delivered = seq
	onUpdate(sess)
}
