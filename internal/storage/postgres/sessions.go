package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foxobr/ficha-rpg/internal/game/character"
	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// SessionRepository provides session persistence with optimistic
// concurrency. It implements session.Store.
//
// Sessions are stored relationally with one row per membership; character
// sheets travel as JSONB documents inside the membership row, so the
// sheet schema can evolve without migrations.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ session.Store = (*SessionRepository)(nil)

// Create inserts a new session at version 1.
//
// Precondition: s.ID must be unique; s.AdminID must reference a user.
// Postcondition: s.Version is set to 1.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO sessions (id, name, admin_id, created_at, version)
		 VALUES ($1, $2, $3, $4, 1)
		 RETURNING version`,
		s.ID, s.Name, s.AdminID, s.CreatedAt,
	).Scan(&s.Version)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("session %q already exists", s.ID)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get loads a session and its player list, ordered by join time.
//
// Postcondition: Returns session.ErrNotFound when no such session exists.
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	s := &session.Session{Players: []*session.Player{}}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, admin_id, created_at, version FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.AdminID, &s.CreatedAt, &s.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	players, err := r.loadPlayers(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	s.Players = players
	return s, nil
}

// Update writes the whole session document if the caller's version
// matches the stored one, bumping the version.
//
// Postcondition: Returns session.ErrVersionConflict when a concurrent
// writer got there first; the stored session is then unchanged.
func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var newVersion int64
	err = tx.QueryRow(ctx,
		`UPDATE sessions SET name = $2, version = version + 1
		 WHERE id = $1 AND version = $3
		 RETURNING version`,
		s.ID, s.Name, s.Version,
	).Scan(&newVersion)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("updating session: %w", err)
		}
		// Distinguish a missing session from a lost race.
		var exists bool
		if probeErr := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, s.ID,
		).Scan(&exists); probeErr != nil {
			return fmt.Errorf("probing session: %w", probeErr)
		}
		if !exists {
			return session.ErrNotFound
		}
		return session.ErrVersionConflict
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM session_players WHERE session_id = $1`, s.ID,
	); err != nil {
		return fmt.Errorf("clearing players: %w", err)
	}
	for _, p := range s.Players {
		sheet, err := marshalSheet(p.Character)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_players
				(session_id, user_id, user_name, character, is_online, last_active)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, p.UserID, p.UserName, sheet, p.IsOnline, p.LastActive,
		); err != nil {
			return fmt.Errorf("inserting player %s: %w", p.UserID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session update: %w", err)
	}
	s.Version = newVersion
	return nil
}

// ListByAdmin returns all sessions owned by adminID, newest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SessionRepository) ListByAdmin(ctx context.Context, adminID string) ([]*session.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, admin_id, created_at, version
		 FROM sessions WHERE admin_id = $1 ORDER BY created_at DESC`,
		adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*session.Session, 0)
	for rows.Next() {
		s := &session.Session{Players: []*session.Player{}}
		if err := rows.Scan(&s.ID, &s.Name, &s.AdminID, &s.CreatedAt, &s.Version); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	for _, s := range sessions {
		players, err := r.loadPlayers(ctx, r.db, s.ID)
		if err != nil {
			return nil, err
		}
		s.Players = players
	}
	return sessions, nil
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *SessionRepository) loadPlayers(ctx context.Context, q querier, sessionID string) ([]*session.Player, error) {
	rows, err := q.Query(ctx,
		`SELECT user_id, user_name, character, is_online, last_active
		 FROM session_players WHERE session_id = $1 ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := make([]*session.Player, 0)
	for rows.Next() {
		var (
			p     session.Player
			sheet []byte
		)
		if err := rows.Scan(&p.UserID, &p.UserName, &sheet, &p.IsOnline, &p.LastActive); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		if len(sheet) > 0 {
			var c character.Character
			if err := json.Unmarshal(sheet, &c); err != nil {
				return nil, fmt.Errorf("decoding character for %s: %w", p.UserID, err)
			}
			p.Character = &c
		}
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating players: %w", err)
	}
	return players, nil
}

// marshalSheet encodes a character as JSONB, passing nil through as NULL.
func marshalSheet(c *character.Character) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding character: %w", err)
	}
	return data, nil
}
