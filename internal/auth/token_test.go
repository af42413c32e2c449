package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour)

	token, err := issuer.AccessToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := issuer.Parse(token, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenExpiry(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour).
		WithClock(func() time.Time { return now })

	token, err := issuer.AccessToken(7)
	require.NoError(t, err)

	now = issued.Add(time.Hour - time.Second)
	userID, err := issuer.Parse(token, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	now = issued.Add(time.Hour + time.Second)
	_, err = issuer.Parse(token, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenOutlivesAccessToken(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour).
		WithClock(func() time.Time { return now })

	access, err := issuer.AccessToken(7)
	require.NoError(t, err)
	refresh, err := issuer.RefreshToken(7)
	require.NoError(t, err)

	now = issued.Add(2 * time.Hour)
	_, err = issuer.Parse(access, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)

	userID, err := issuer.Parse(refresh, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestWrongKindRejected(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour)

	access, err := issuer.AccessToken(7)
	require.NoError(t, err)
	refresh, err := issuer.RefreshToken(7)
	require.NoError(t, err)

	_, err = issuer.Parse(access, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenWrongKind)

	_, err = issuer.Parse(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrTokenWrongKind)
}

func TestMalformedTokenRejected(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour)

	_, err := issuer.Parse("not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = issuer.Parse("", KindAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTamperedSignatureRejected(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour)

	token, err := issuer.AccessToken(7)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = issuer.Parse(tampered, KindAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestForeignSecretRejected(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour, 30*24*time.Hour)
	other := NewIssuer("other-secret", time.Hour, 30*24*time.Hour)

	token, err := other.AccessToken(7)
	require.NoError(t, err)

	_, err = issuer.Parse(token, KindAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
