// Package session implements game sessions, membership, and the
// role-based authorization rules that gate every session mutation.
package session

import (
	"time"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// Role constants for user privilege levels.
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is a recognised privilege level.
func ValidRole(role string) bool {
	return role == RolePlayer || role == RoleAdmin
}

// User is an authenticated identity. Role is assigned at signup and is
// immutable through this package.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user holds the admin (game master) role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Player is one player's membership record within a Session.
//
// Character stays nil until the player saves a sheet for the first time;
// once set it always belongs to UserID.
type Player struct {
	UserID     string               `json:"userId"`
	UserName   string               `json:"userName"`
	Character  *character.Character `json:"character"`
	IsOnline   bool                 `json:"isOnline"`
	LastActive time.Time            `json:"lastActive"`
}

// Session is a game-master-owned grouping of players.
//
// Players is ordered by join time and unique by UserID. Version is the
// optimistic-concurrency counter maintained by the store; it is not part
// of the wire representation.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
	Players   []*Player `json:"players"`

	Version int64 `json:"-"`
}

// Clone returns a deep copy of the session, including player characters.
func (s *Session) Clone() *Session {
	out := *s
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		if p.Character != nil {
			cp.Character = p.Character.Clone()
		}
		out.Players[i] = &cp
	}
	return &out
}

// FindPlayer returns the membership record for userID, or nil.
func (s *Session) FindPlayer(userID string) *Player {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Join adds a membership record for the user, or refreshes the existing
// one. Joining is idempotent on the membership list: a returning member
// is never duplicated, but their activity markers still refresh.
//
// Postcondition: FindPlayer(u.ID) is non-nil, online, and freshly active;
// u.ID appears exactly once in Players.
func (s *Session) Join(u User, at time.Time) *Player {
	if p := s.FindPlayer(u.ID); p != nil {
		p.IsOnline = true
		p.LastActive = at
		return p
	}
	p := &Player{
		UserID:     u.ID,
		UserName:   u.Name,
		IsOnline:   true,
		LastActive: at,
	}
	s.Players = append(s.Players, p)
	return p
}
