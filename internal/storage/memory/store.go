// Package memory provides in-memory stores with the same semantics as the
// PostgreSQL repositories. It backs the development server and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/storage/postgres"
)

// The memory stores share the postgres sentinel errors so callers match
// a single identity regardless of the backing store.
var (
	ErrUserNotFound       = postgres.ErrUserNotFound
	ErrEmailTaken         = postgres.ErrEmailTaken
	ErrInvalidCredentials = postgres.ErrInvalidCredentials
)

// SessionStore is an in-memory session.Store with optimistic versioning.
// All methods are safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session.Session)}
}

// Create stores a new session at version 1.
//
// Precondition: s.ID must be unique.
func (st *SessionStore) Create(_ context.Context, s *session.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[s.ID]; exists {
		return fmt.Errorf("session %q already exists", s.ID)
	}
	stored := s.Clone()
	stored.Version = 1
	st.sessions[s.ID] = stored
	s.Version = 1
	return nil
}

// Get returns a deep copy of the stored session.
//
// Postcondition: Mutating the returned session does not affect the store.
func (st *SessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s.Clone(), nil
}

// Update replaces the stored session if the caller's version matches,
// incrementing the version.
//
// Postcondition: Returns session.ErrVersionConflict when a concurrent
// writer got there first; the stored session is then unchanged.
func (st *SessionStore) Update(_ context.Context, s *session.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	stored, ok := st.sessions[s.ID]
	if !ok {
		return session.ErrNotFound
	}
	if stored.Version != s.Version {
		return session.ErrVersionConflict
	}
	next := s.Clone()
	next.Version = stored.Version + 1
	st.sessions[s.ID] = next
	s.Version = next.Version
	return nil
}

// ListByAdmin returns copies of all sessions owned by adminID.
func (st *SessionStore) ListByAdmin(_ context.Context, adminID string) ([]*session.Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*session.Session, 0)
	for _, s := range st.sessions {
		if s.AdminID == adminID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

type storedUser struct {
	user         session.User
	passwordHash []byte
}

// UserStore is an in-memory user registry with bcrypt credentials.
// All methods are safe for concurrent use.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*storedUser
	byEmail map[string]*storedUser
	cost    int
}

// NewUserStore creates an empty UserStore hashing passwords at the given
// bcrypt cost.
func NewUserStore(bcryptCost int) *UserStore {
	return &UserStore{
		byID:    make(map[string]*storedUser),
		byEmail: make(map[string]*storedUser),
		cost:    bcryptCost,
	}
}

// Create registers a new user.
//
// Precondition: email must not be registered; role must be valid.
// Postcondition: Returns the created user with a fresh ID, or ErrEmailTaken.
func (st *UserStore) Create(_ context.Context, email, password, name, role string) (session.User, error) {
	if !session.ValidRole(role) {
		return session.User{}, fmt.Errorf("%w: %q", postgres.ErrInvalidRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), st.cost)
	if err != nil {
		return session.User{}, fmt.Errorf("hashing password: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.byEmail[email]; exists {
		return session.User{}, ErrEmailTaken
	}
	u := &storedUser{
		user: session.User{
			ID:    uuid.NewString(),
			Email: email,
			Name:  name,
			Role:  role,
		},
		passwordHash: hash,
	}
	st.byID[u.user.ID] = u
	st.byEmail[email] = u
	return u.user, nil
}

// GetByID returns the user with the given id.
func (st *UserStore) GetByID(_ context.Context, id string) (session.User, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	u, ok := st.byID[id]
	if !ok {
		return session.User{}, ErrUserNotFound
	}
	return u.user, nil
}

// Authenticate verifies the email/password pair.
//
// Postcondition: Returns the user on success, ErrInvalidCredentials on
// any mismatch. Unknown emails and wrong passwords are indistinguishable.
func (st *UserStore) Authenticate(_ context.Context, email, password string) (session.User, error) {
	st.mu.RLock()
	u, ok := st.byEmail[email]
	st.mu.RUnlock()

	if !ok {
		return session.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return session.User{}, ErrInvalidCredentials
	}
	return u.user, nil
}
