package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

var member = Identity{UserID: 42, Email: "member@gym.test", Role: "member"}

func fixedIssuer(secret string, at time.Time) *Issuer {
	i := NewIssuer(secret)
	i.now = func() time.Time { return at }
	return i
}

func TestHashPassword(t *testing.T) {
	t.Run("hashes password", func(t *testing.T) {
		hashed, err := HashPassword("mySecurePassword123")

		assert.NoError(t, err)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, "mySecurePassword123", hashed)
	})

	t.Run("salted hashes differ", func(t *testing.T) {
		hash1, _ := HashPassword("samePassword")
		hash2, _ := HashPassword("samePassword")

		assert.NotEqual(t, hash1, hash2)
	})
}

func TestCheckPassword(t *testing.T) {
	hashed, _ := HashPassword("correctPassword")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestIssuer_SignAndVerify(t *testing.T) {
	issuer := NewIssuer(testSecret)

	token, err := issuer.Sign(member, AccessToken)
	require.NoError(t, err)

	claims, err := issuer.Verify(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, member, claims.Identity())
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, jwtIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, jwtAudience)
}

func TestIssuer_EmptySecret(t *testing.T) {
	issuer := NewIssuer("")

	token, err := issuer.Sign(member, AccessToken)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	assert.Empty(t, token)

	_, err = issuer.Issue(member)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = issuer.Verify("a.b.c", AccessToken)
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestIssuer_Issue(t *testing.T) {
	issuer := NewIssuer(testSecret)

	pair, err := issuer.Issue(member)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	_, err = issuer.Verify(pair.AccessToken, AccessToken)
	assert.NoError(t, err)
	_, err = issuer.Verify(pair.RefreshToken, RefreshToken)
	assert.NoError(t, err)
}

func TestIssuer_VerifyRejects(t *testing.T) {
	issuer := NewIssuer(testSecret)
	access, err := issuer.Sign(member, AccessToken)
	require.NoError(t, err)
	refresh, err := issuer.Sign(member, RefreshToken)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		claims, err := NewIssuer("wrong-secret").Verify(access, AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("invalid.token.format", AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh used as access", func(t *testing.T) {
		_, err := issuer.Verify(refresh, AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("access used as refresh", func(t *testing.T) {
		_, err := issuer.Verify(access, RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &Claims{
			UserID:    1,
			TokenType: AccessToken,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		_, err := issuer.Verify(signed, AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssuer_Expiry(t *testing.T) {
	issued := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	pair, err := fixedIssuer(testSecret, issued).Issue(member)
	require.NoError(t, err)

	justBefore := fixedIssuer(testSecret, issued.Add(AccessTokenTTL-time.Second))
	claims, err := justBefore.Verify(pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Add(AccessTokenTTL)))

	after := fixedIssuer(testSecret, issued.Add(AccessTokenTTL+time.Second))
	_, err = after.Verify(pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	claims, err = after.Verify(pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Add(RefreshTokenTTL)))
}
