package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "alice")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", 1, 7)
	other := NewJWTManager("secret-b", 1, 7)

	tokenString, err := manager.GenerateToken(1, "alice")
	require.NoError(t, err)

	_, err = other.VerifyToken(tokenString)
	assert.Error(t, err)

	_, err = manager.VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateShareToken(t *testing.T) {
	token, err := GenerateShareToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 16)
	for _, r := range token {
		assert.True(t, strings.ContainsRune(shareTokenAlphabet, r), "非法字符: %c", r)
	}

	// 低于下限时按下限生成
	short, err := GenerateShareToken(3)
	require.NoError(t, err)
	assert.Len(t, short, 10)

	// 两次生成不应相同
	again, err := GenerateShareToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}
