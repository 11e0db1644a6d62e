package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	svc, err := NewService(Config{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Now:             now,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, VerifyPassword("secret", hash))
	assert.False(t, VerifyPassword("Secret", hash))
	assert.False(t, VerifyPassword("secret", "not a hash"))
}

func TestAccessToken(t *testing.T) {
	svc := newTestService(t, time.Now)
	token, err := svc.IssueAccessToken("erika@example.com")
	require.NoError(t, err)

	email, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "erika@example.com", email)
}

func TestRefreshToken(t *testing.T) {
	svc := newTestService(t, time.Now)
	token, err := svc.IssueRefreshToken("erika@example.com")
	require.NoError(t, err)

	email, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "erika@example.com", email)
}

// TestScopesAreNotInterchangeable verifies that a refresh token cannot be used as access token
// and vice versa.
func TestScopesAreNotInterchangeable(t *testing.T) {
	svc := newTestService(t, time.Now)
	access, err := svc.IssueAccessToken("erika@example.com")
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken("erika@example.com")
	require.NoError(t, err)

	_, err = svc.ParseRefreshToken(access)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = svc.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestExpiredToken(t *testing.T) {
	issued := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := newTestService(t, func() time.Time { return now })
	token, err := svc.IssueAccessToken("erika@example.com")
	require.NoError(t, err)

	now = issued.Add(14 * time.Minute)
	_, err = svc.ParseAccessToken(token)
	assert.NoError(t, err)

	now = issued.Add(16 * time.Minute)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Contains(t, err.Error(), "token has expired")
}

func TestWrongSecret(t *testing.T) {
	token, err := newTestService(t, time.Now).IssueAccessToken("erika@example.com")
	require.NoError(t, err)

	other, err := NewService(Config{Secret: []byte("other-secret")})
	require.NoError(t, err)
	_, err = other.ParseAccessToken(token)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Contains(t, err.Error(), "signature is invalid")
}

// TestUnsignedToken verifies that the "none" algorithm is rejected.
func TestUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "erika@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scope: ScopeAccess,
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService(t, time.Now).ParseAccessToken(signed)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestMalformedToken(t *testing.T) {
	_, err := newTestService(t, time.Now).ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
