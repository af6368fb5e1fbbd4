package session

import (
	"sync"
	"time"
)

// Tracker records the last activity time of each player per session and
// derives online/offline liveness from it. All methods are safe for
// concurrent use.
//
// Liveness is best-effort: the system polls rather than pushes, so a
// player is "online" when they have been active within the window.
type Tracker struct {
	mu       sync.RWMutex
	window   time.Duration
	lastSeen map[string]map[string]time.Time // sessionID → userID → last activity
	now      func() time.Time
}

// NewTracker creates a Tracker that reports players offline after the
// given inactivity window.
//
// Precondition: window must be positive.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:   window,
		lastSeen: make(map[string]map[string]time.Time),
		now:      time.Now,
	}
}

// Touch records activity for the player in the session.
//
// Postcondition: the player is reported online for the next window.
func (t *Tracker) Touch(sessionID, userID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastSeen[sessionID] == nil {
		t.lastSeen[sessionID] = make(map[string]time.Time)
	}
	if at.After(t.lastSeen[sessionID][userID]) {
		t.lastSeen[sessionID][userID] = at
	}
}

// Online reports whether the player has been active within the window.
func (t *Tracker) Online(sessionID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen, ok := t.lastSeen[sessionID][userID]
	if !ok {
		return false
	}
	return t.now().Sub(seen) <= t.window
}

// Decorate refreshes the IsOnline and LastActive fields of every player
// in the session from the tracker's records. Players the tracker has
// never seen keep their stored markers but are reported offline.
func (t *Tracker) Decorate(s *Session) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	for _, p := range s.Players {
		seen, ok := t.lastSeen[s.ID][p.UserID]
		if !ok {
			p.IsOnline = false
			continue
		}
		p.IsOnline = now.Sub(seen) <= t.window
		if seen.After(p.LastActive) {
			p.LastActive = seen
		}
	}
}

// Forget drops all records for the session, releasing its memory.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastSeen, sessionID)
}
