package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxobr/ficha-rpg/internal/game/session"
	"github.com/foxobr/ficha-rpg/internal/storage/postgres"
	"github.com/foxobr/ficha-rpg/internal/testutil"
)

func setupRepos(t *testing.T) (*postgres.UserRepository, *postgres.SessionRepository) {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t, "../../../migrations")
	return postgres.NewUserRepository(pc.RawPool, bcrypt.MinCost), postgres.NewSessionRepository(pc.RawPool)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@mesa.dev", prefix, time.Now().UnixNano())
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	email := uniqueEmail("ana")
	created, err := users.Create(ctx, email, "segredo123", "Ana", session.RolePlayer)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, email, created.Email)
	assert.Equal(t, session.RolePlayer, created.Role)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	email := uniqueEmail("dup")
	_, err := users.Create(ctx, email, "segredo123", "Ana", session.RolePlayer)
	require.NoError(t, err)

	_, err = users.Create(ctx, email, "outrasenha", "Bia", session.RolePlayer)
	assert.ErrorIs(t, err, postgres.ErrEmailTaken)
}

func TestUserRepository_InvalidRole(t *testing.T) {
	users, _ := setupRepos(t)

	_, err := users.Create(context.Background(), uniqueEmail("x"), "segredo123", "X", "editor")
	assert.ErrorIs(t, err, postgres.ErrInvalidRole)
}

func TestUserRepository_Authenticate(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	email := uniqueEmail("login")
	created, err := users.Create(ctx, email, "segredo123", "Ana", session.RolePlayer)
	require.NoError(t, err)

	got, err := users.Authenticate(ctx, email, "segredo123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = users.Authenticate(ctx, email, "errada")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, uniqueEmail("missing"), "segredo123")
	assert.ErrorIs(t, err, postgres.ErrInvalidCredentials,
		"unknown emails must be indistinguishable from wrong passwords")
}

func TestUserRepository_SetRole(t *testing.T) {
	users, _ := setupRepos(t)
	ctx := context.Background()

	email := uniqueEmail("promote")
	created, err := users.Create(ctx, email, "segredo123", "Ana", session.RolePlayer)
	require.NoError(t, err)

	require.NoError(t, users.SetRole(ctx, email, session.RoleAdmin))

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, got.Role)

	assert.ErrorIs(t, users.SetRole(ctx, email, "editor"), postgres.ErrInvalidRole)
	assert.ErrorIs(t, users.SetRole(ctx, uniqueEmail("ghost"), session.RoleAdmin), postgres.ErrUserNotFound)
}
