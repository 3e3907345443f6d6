package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onepager/internal/domain"
)

func testVerifier(t *testing.T) (JWTVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	kf := func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewJWTVerifierWithKeyfunc(kf, logger), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims SupabaseClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() SupabaseClaims {
	return SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8d0f2c1e-3c1a-4b8e-9d57-0f4f4b7f3a10",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "writer@example.com",
		Role:  "authenticated",
	}
}

func TestVerifyTokenAccepts(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.VerifyToken(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "8d0f2c1e-3c1a-4b8e-9d57-0f4f4b7f3a10", claims.GetUserID())
	assert.Equal(t, "writer@example.com", claims.Email)
}

func TestVerifyTokenRejects(t *testing.T) {
	v, key := testVerifier(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noSubject := validClaims()
	noSubject.Subject = ""

	anon := validClaims()
	anon.Role = "anon"

	anonymousUser := validClaims()
	anonymousUser.IsAnonymous = true

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: sign(t, key, expired)},
		{name: "missing expiry", token: sign(t, key, noExpiry)},
		{name: "missing subject", token: sign(t, key, noSubject)},
		{name: "anon role", token: sign(t, key, anon)},
		{name: "anonymous sign-in", token: sign(t, key, anonymousUser)},
		{name: "wrong key", token: sign(t, otherKey, validClaims())},
		{name: "symmetric algorithm", token: hs256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewJWTVerifierRequiresURL(t *testing.T) {
	_, err := NewJWTVerifier("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
