package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

var (
	jwtService = NewJWTService("test-signing-key", "test-issuer")
	userID     = id.UserID(uuid.New())
	sessionID  = id.SessionID(uuid.New())
)

func TestGenerateAndValidate(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(userID, sessionID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := jwtService.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, issued.JTI, claims.ID)
}

func TestValidateRejects(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := jwtService.ValidateToken("invalid-token-string")
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
	})

	t.Run("expired", func(t *testing.T) {
		issued, err := jwtService.GenerateAccessToken(userID, sessionID, -time.Hour)
		require.NoError(t, err)
		_, err = jwtService.ValidateToken(issued.Token)
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
	})

	t.Run("other signing key", func(t *testing.T) {
		issued, err := NewJWTService("another-key", "test-issuer").GenerateAccessToken(userID, sessionID, time.Hour)
		require.NoError(t, err)
		_, err = jwtService.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("other issuer", func(t *testing.T) {
		issued, err := NewJWTService("test-signing-key", "someone-else").GenerateAccessToken(userID, sessionID, time.Hour)
		require.NoError(t, err)
		_, err = jwtService.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestAdapter(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(userID, sessionID, time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, issued.JTI, claims.JTI)
}
