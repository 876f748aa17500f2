package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateAccessToken("10000001", "user", "test-secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "10000001", claims.Username)
	require.Equal(t, "user", claims.Role)
	require.Equal(t, "10000001", claims.Subject)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("10000001", "user", "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	require.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	token, err := GenerateAccessToken("10000001", "user", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	require.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "test-secret")
	require.Error(t, err)
}
