package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// ErrUserNotFound is returned when a user lookup yields no results.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when creating a duplicate email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRole is returned when an unrecognised role string is supplied.
var ErrInvalidRole = errors.New("invalid role")

// UserRepository provides user persistence operations.
type UserRepository struct {
	db   *pgxpool.Pool
	cost int
}

// NewUserRepository creates a UserRepository backed by the given pool,
// hashing passwords at the given bcrypt cost.
//
// Precondition: db must be a valid, open connection pool; cost must be a
// valid bcrypt cost.
func NewUserRepository(db *pgxpool.Pool, cost int) *UserRepository {
	return &UserRepository{db: db, cost: cost}
}

// Create inserts a new user with a bcrypt-hashed password.
//
// Precondition: email and password must be non-empty; role must be valid.
// Postcondition: Returns the created user with a fresh ID, or ErrEmailTaken
// if the email is registered.
func (r *UserRepository) Create(ctx context.Context, email, password, name, role string) (session.User, error) {
	if !session.ValidRole(role) {
		return session.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return session.User{}, fmt.Errorf("hashing password: %w", err)
	}

	var u session.User
	err = r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, name, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, email, name, role`,
		uuid.NewString(), email, string(hash), name, role,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role)
	if err != nil {
		if isDuplicateKeyError(err) {
			return session.User{}, ErrEmailTaken
		}
		return session.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by id.
//
// Postcondition: Returns the user or ErrUserNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (session.User, error) {
	var u session.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, role FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.User{}, ErrUserNotFound
		}
		return session.User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// Authenticate verifies an email/password pair.
//
// Postcondition: Returns the user on success, ErrInvalidCredentials on
// any mismatch. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (r *UserRepository) Authenticate(ctx context.Context, email, password string) (session.User, error) {
	var (
		u    session.User
		hash string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, role, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.User{}, ErrInvalidCredentials
		}
		return session.User{}, fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return session.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// SetRole updates the role for the user with the given email.
//
// Precondition: role must be a valid role string (use session.ValidRole).
// Postcondition: The user's role is updated, or ErrInvalidRole /
// ErrUserNotFound is returned.
func (r *UserRepository) SetRole(ctx context.Context, email, role string) error {
	if !session.ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE users SET role = $1 WHERE email = $2`,
		role, email,
	)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
