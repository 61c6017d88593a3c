package jwttoken

import (
	"testing"
	"time"

	id "zirrmi/pkg/domain"
	dErrors "zirrmi/pkg/domain-errors"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userID = id.NewUserID()
	email  = "ana@acme.io"
)

func Test_GenerateSessionToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "test-issuer", time.Hour)

	token, err := svc.GenerateSessionToken(userID, email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "test-issuer", time.Hour)

	_, err := svc.ValidateToken("invalid-token-string")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewJWTService("test-signing-key", "test-issuer", time.Hour, WithClock(clock))

	token, err := svc.GenerateSessionToken(userID, email)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	_, err = svc.ValidateToken(token)
	require.ErrorContains(t, err, "token has expired")
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	issuer := NewJWTService("key-a", "test-issuer", time.Hour)
	token, err := issuer.GenerateSessionToken(userID, email)
	require.NoError(t, err)

	_, err = NewJWTService("key-b", "test-issuer", time.Hour).ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = NewJWTService("key-a", "other-issuer", time.Hour).ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_UserIDFromToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "test-issuer", time.Hour)
	token, err := svc.GenerateSessionToken(userID, email)
	require.NoError(t, err)

	got, err := svc.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
