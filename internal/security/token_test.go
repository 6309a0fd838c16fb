package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "agrirent-auth")
	userID := uuid.New()

	token, err := tm.GenerateAccessToken(userID, "farmer@example.com", []string{RoleAdmin})
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "farmer@example.com", claims.Email)
	assert.True(t, claims.HasRole(RoleAdmin))
}

func TestValidateTokenRejects(t *testing.T) {
	tm := NewTokenManager(testSecret, "agrirent-auth")

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", "agrirent-auth")
		token, err := other.GenerateAccessToken(uuid.New(), "", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewTokenManager(testSecret, "someone-else")
		token, err := other.GenerateAccessToken(uuid.New(), "", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := &tokenManager{secret: []byte(testSecret), issuer: "agrirent-auth", now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
		token, err := expired.GenerateAccessToken(uuid.New(), "", nil)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("SubjectOnly", func(t *testing.T) {
		userID := uuid.New()
		claims := UserClaims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    "agrirent-auth",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		got, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaimsContext(t *testing.T) {
	assert.Equal(t, uuid.Nil, UserIDFromContext(context.Background()))

	userID := uuid.New()
	ctx := WithClaims(context.Background(), &UserClaims{UserID: userID})
	assert.Equal(t, userID, UserIDFromContext(ctx))
}
