package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// Store is the session persistence interface the Service operates on.
//
// Update must compare the session's Version against the stored one and
// return ErrVersionConflict when they differ, incrementing the version on
// success. The whole session document is written as a unit.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByAdmin(ctx context.Context, adminID string) ([]*Session, error)
}

// ConditionAction selects how a condition mutation is applied.
type ConditionAction string

const (
	// ConditionAdd activates a condition on the target character.
	ConditionAdd ConditionAction = "add"
	// ConditionRemove deactivates a condition on the target character.
	ConditionRemove ConditionAction = "remove"
)

// ErrInvalidAction is returned for an unrecognised condition action.
var ErrInvalidAction = errors.New("session: invalid condition action")

// casRetries bounds the number of compare-and-swap attempts per mutation
// before the conflict is surfaced to the caller.
const casRetries = 3

// Service applies the authorization rules and executes session operations
// against an injected Store. All mutations are all-or-nothing: a denied
// or conflicted operation leaves the stored session untouched.
type Service struct {
	store    Store
	presence *Tracker
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service.
//
// Precondition: store, presence, and logger must be non-nil.
func NewService(store Store, presence *Tracker, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		presence: presence,
		logger:   logger,
		now:      time.Now,
	}
}

// Create creates a new session owned by the caller.
//
// Precondition: caller must hold the admin role.
// Postcondition: Returns the created session with a fresh ID, the caller
// as adminId, and no players, or a Denial.
func (s *Service) Create(ctx context.Context, caller User, name string) (*Session, error) {
	if err := requireAdmin("create session", caller); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		AdminID:   caller.ID,
		CreatedAt: s.now().UTC(),
		Players:   []*Player{},
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("admin_id", caller.ID),
		zap.String("name", name),
	)
	return sess, nil
}

// Get returns the session with the given id, with liveness markers
// refreshed from the presence tracker.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Deny("get session", ReasonNotFound)
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	s.presence.Decorate(sess)
	return sess, nil
}

// Join adds the caller to the session, or refreshes their membership.
//
// Precondition: caller must be authenticated; the session must exist.
// Postcondition: The caller appears exactly once in the player list,
// online and freshly active.
func (s *Service) Join(ctx context.Context, caller User, sessionID string) (*Session, error) {
	if err := requireAuthenticated("join session", caller); err != nil {
		return nil, err
	}

	s.presence.Touch(sessionID, caller.ID, s.now())
	sess, err := s.mutate(ctx, "join session", sessionID, func(sess *Session) error {
		sess.Join(caller, s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined session",
		zap.String("session_id", sessionID),
		zap.String("user_id", caller.ID),
	)
	return sess, nil
}

// SaveCharacter replaces the caller's character in the session. Only the
// owning player may save their sheet; a stable character id is assigned
// on first save.
//
// Precondition: caller must be an authenticated member of the session.
// Postcondition: Returns the saved character with ID and SessionID set.
func (s *Service) SaveCharacter(ctx context.Context, caller User, sessionID string, c *character.Character) (*character.Character, error) {
	if err := requireAuthenticated("save character", caller); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("save character: %w", character.ErrNilCharacter)
	}

	saved := c.Clone()
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	saved.SessionID = sessionID

	s.presence.Touch(sessionID, caller.ID, s.now())
	_, err := s.mutate(ctx, "save character", sessionID, func(sess *Session) error {
		p := sess.FindPlayer(caller.ID)
		if p == nil {
			return Deny("save character", ReasonNotMember)
		}
		p.Character = saved
		p.IsOnline = true
		p.LastActive = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// GetCharacter returns the character of the given player in the session.
// There is no role check: anyone holding the session and user ids may
// read the sheet.
func (s *Service) GetCharacter(ctx context.Context, sessionID, userID string) (*character.Character, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p := sess.FindPlayer(userID)
	if p == nil {
		return nil, Deny("get character", ReasonNotFound)
	}
	return p.Character, nil
}

// ApplyCondition adds or removes a status condition on the target
// player's character. Both directions are idempotent: adding a present
// condition or removing an absent one changes nothing and is not an
// error.
//
// Condition names are deliberately not validated against the catalog;
// game masters may apply ad hoc conditions and the sheet renders unknown
// names with fallback metadata.
//
// Precondition: caller must hold the admin role; the target player must
// exist in the session and have a saved character.
func (s *Service) ApplyCondition(ctx context.Context, caller User, sessionID, targetUserID, condition string, action ConditionAction) (*character.Character, error) {
	if err := requireAdmin("apply condition", caller); err != nil {
		return nil, err
	}
	if action != ConditionAdd && action != ConditionRemove {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	var mutated *character.Character
	_, err := s.mutate(ctx, "apply condition", sessionID, func(sess *Session) error {
		p := sess.FindPlayer(targetUserID)
		if p == nil || p.Character == nil {
			return Deny("apply condition", ReasonNotFound)
		}
		switch action {
		case ConditionAdd:
			p.Character.AddCondition(condition)
		case ConditionRemove:
			p.Character.RemoveCondition(condition)
		}
		mutated = p.Character
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("condition mutated",
		zap.String("session_id", sessionID),
		zap.String("target_user_id", targetUserID),
		zap.String("condition", condition),
		zap.String("action", string(action)),
	)
	return mutated, nil
}

// ListAdminSessions returns the sessions owned by the caller.
//
// Precondition: caller must hold the admin role.
// Postcondition: Every returned session has adminId == caller.ID.
func (s *Service) ListAdminSessions(ctx context.Context, caller User) ([]*Session, error) {
	if err := requireAdmin("list sessions", caller); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListByAdmin(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("listing admin sessions: %w", err)
	}
	for _, sess := range sessions {
		s.presence.Decorate(sess)
	}
	return sessions, nil
}

// mutate runs a read-modify-write cycle against the store with a bounded
// compare-and-swap retry. fn runs on a fresh snapshot each attempt and
// must be side-effect free outside the session.
func (s *Service) mutate(ctx context.Context, op, sessionID string, fn func(*Session) error) (*Session, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		sess, err := s.store.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, Deny(op, ReasonNotFound)
			}
			return nil, fmt.Errorf("%s: loading session: %w", op, err)
		}

		if err := fn(sess); err != nil {
			return nil, err
		}

		err = s.store.Update(ctx, sess)
		if err == nil {
			s.presence.Decorate(sess)
			return sess, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("%s: updating session: %w", op, err)
		}

		lastErr = err
		s.logger.Debug("session update conflicted, retrying",
			zap.String("session_id", sessionID),
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, fmt.Errorf("%s: %w", op, lastErr)
}
