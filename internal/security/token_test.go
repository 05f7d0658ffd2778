package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_AccessToken(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	t.Run("Round trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken(42, "worker", []string{"technician"})
		require.NoError(t, err)

		claims, err := m.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(42), claims.UserID)
		assert.Equal(t, "worker", claims.Name)
		assert.Equal(t, []string{"technician"}, claims.Roles)
		assert.NotEmpty(t, claims.ID)

		actor := claims.Actor()
		assert.Equal(t, int32(42), actor.UserID)
		assert.Equal(t, "worker", actor.Sender())
	})

	t.Run("Unique token ids", func(t *testing.T) {
		a, err := m.GenerateAccessToken(1, "", nil)
		require.NoError(t, err)
		b, err := m.GenerateAccessToken(1, "", nil)
		require.NoError(t, err)

		ca, err := m.ValidateToken(a)
		require.NoError(t, err)
		cb, err := m.ValidateToken(b)
		require.NoError(t, err)
		assert.NotEqual(t, ca.ID, cb.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewTokenManager(testSecret, -time.Minute)
		token, err := expired.GenerateAccessToken(1, "", nil)
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour)
		token, err := other.GenerateAccessToken(1, "", nil)
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong type", func(t *testing.T) {
		claims := UserClaims{
			UserID: 1,
			Type:   "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
