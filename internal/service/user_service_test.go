package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskdeck/internal/repository"
	"taskdeck/internal/repository/sqlite"
)

func newUserService(t *testing.T) (UserService, repository.UserRepository) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(context.Background()))

	return NewUserService(users), users
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Empty(t, user.PasswordHash, "returned user must not expose the hash")

	stored, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret123")))
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "Secret123")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "Secret123")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
		field    string
	}{
		{"short username", "al", "al@example.com", "Secret123", "username"},
		{"long username", strings.Repeat("a", 51), "al@example.com", "Secret123", "username"},
		{"bad email", "alice", "not-an-email", "Secret123", "email"},
		{"dotless email domain", "alice", "alice@localhost", "Secret123", "email"},
		{"email with display name", "alice", "Alice <alice@example.com>", "Secret123", "email"},
		{"short password", "alice", "alice@example.com", "abc", "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, ve, tc.field)
		})
	}
}

func TestRegisterUsernameLengthCountsRunes(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	// 30 two-byte runes sit inside the 3-50 character window
	user, err := svc.Register(ctx, strings.Repeat("é", 30), "multi@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 30), user.Username)

	_, err = svc.Register(ctx, strings.Repeat("é", 51), "other@example.com", "Secret123")
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve, "username")
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown usernames fail with the exact same error as bad passwords
	_, err = svc.Authenticate(ctx, "nobody", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByID(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)

	user, err := svc.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetByID(ctx, registered.ID+1000)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
