package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("secret", "ABC123", "user-1", TokenRoleStoryteller, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, ViewerClaims{Room: "ABC123", UserID: "user-1", Role: TokenRoleStoryteller}, claims)
	assert.True(t, claims.IsStoryteller())
}

func TestParseTokenRejects(t *testing.T) {
	player, err := IssueToken("secret", "ABC123", "user-2", TokenRolePlayer, time.Hour)
	require.NoError(t, err)
	claims, err := ParseToken("secret", player)
	require.NoError(t, err)
	assert.False(t, claims.IsStoryteller())

	_, err = ParseToken("other", player)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"room": "ABC123",
		"sub":  "user-2",
		"role": TokenRolePlayer,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badRole, err := IssueToken("secret", "ABC123", "user-2", "ADMIN", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("secret", badRole)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
