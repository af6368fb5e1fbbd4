package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// SaveFunc persists one character snapshot.
type SaveFunc func(ctx context.Context, c *character.Character) error

// Debouncer collapses rapid local edits into one persisted write after a
// quiet period, with a periodic flush so a steady stream of edits still
// reaches the server.
//
// This is a local buffering optimisation only: no cross-client
// coordination is implied, and the newest snapshot always supersedes any
// pending one.
type Debouncer struct {
	save   SaveFunc
	quiet  time.Duration
	flush  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending *character.Character
	timer   *time.Timer
}

// NewDebouncer creates a Debouncer persisting through save after the
// quiet period, and at most every flush interval while edits keep
// arriving.
//
// Precondition: quiet and flush must be positive; quiet < flush.
func NewDebouncer(save SaveFunc, quiet, flush time.Duration, logger *zap.Logger) *Debouncer {
	return &Debouncer{save: save, quiet: quiet, flush: flush, logger: logger}
}

// Update buffers a snapshot, replacing any pending one, and (re)arms the
// quiet-period timer.
func (d *Debouncer) Update(ctx context.Context, c *character.Character) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = c.Clone()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.Flush(ctx) })
}

// Flush persists the pending snapshot now, if any. Safe to call at any
// time; concurrent flushes collapse onto the single pending snapshot.
func (d *Debouncer) Flush(ctx context.Context) {
	d.mu.Lock()
	snapshot := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if snapshot == nil {
		return
	}
	if err := d.save(ctx, snapshot); err != nil {
		d.logger.Warn("auto-save failed, re-buffering", zap.Error(err))
		// Put the snapshot back unless a newer edit arrived meanwhile.
		d.mu.Lock()
		if d.pending == nil {
			d.pending = snapshot
		}
		d.mu.Unlock()
	}
}

// Run flushes pending edits at the periodic interval until ctx is
// cancelled, then performs one final flush. Blocks until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	ticker := time.NewTicker(d.flush)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			d.Flush(ctx)
		}
	}
}
