package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestUserIDFromToken(t *testing.T) {
	t.Run("reads the subject claim", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "user-42"})

		userID, err := UserIDFromToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "user-42", userID)
	})

	t.Run("falls back to id claims", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"id": "user-7"})

		userID, err := UserIDFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-7", userID)
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		_, err := UserIDFromToken("")
		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := UserIDFromToken("Bearer not.a.token")
		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("rejects a token without identity", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"role": "admin"})

		_, err := UserIDFromToken(token)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Reason, "no user identifier")
	})
}
