package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	svc := NewSessionTokenService("test-secret", "openshelf", "openshelf")

	extraClaims := map[string]interface{}{
		"id":   "6a1f6cfb-9f0e-4f7b-8b1a-1a2b3c4d5e6f",
		"role": "admin",
	}
	tokenStr, expiry, err := svc.GenerateToken("subject-1", extraClaims)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionExpiry), expiry, time.Minute)

	parsed, err := svc.ParseToken(tokenStr)
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "subject-1", claims["sub"])
	assert.Equal(t, "openshelf", claims["iss"])

	extra, ok := claims["extra_claims"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "admin", extra["role"])
}

func TestParseToken_WrongSecret(t *testing.T) {
	svc := NewSessionTokenService("test-secret", "openshelf", "openshelf")
	other := NewSessionTokenService("other-secret", "openshelf", "openshelf")

	tokenStr, _, err := svc.GenerateToken("subject-1", nil)
	require.NoError(t, err)

	_, err = other.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := NewSessionTokenService("test-secret", "openshelf", "openshelf")
	_, err := svc.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestWithSessionExpiry(t *testing.T) {
	svc := NewSessionTokenService("test-secret", "openshelf", "openshelf",
		WithSessionExpiry(2*time.Hour))
	assert.Equal(t, 2*time.Hour, svc.Expiry())

	_, expiry, err := svc.GenerateToken("subject-1", nil)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiry, time.Minute)

	// non-positive overrides are ignored
	svc = NewSessionTokenService("test-secret", "openshelf", "openshelf",
		WithSessionExpiry(0))
	assert.Equal(t, DefaultSessionExpiry, svc.Expiry())
}
