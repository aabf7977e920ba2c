package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	token, expiresAt, err := GenerateToken(cfg, "coach-alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "coach-alice", claims.Actor)
	assert.Equal(t, "coach-alice", claims.Subject)
	assert.Equal(t, "playsync", claims.Issuer)
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret")}

	token, expiresAt, err := GenerateToken(cfg, "coach-alice")
	require.NoError(t, err)
	assert.True(t, expiresAt.IsZero())

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, _, err := GenerateToken(JWTConfig{}, "coach-alice")
	assert.Error(t, err)
}

func TestValidateToken_Invalid(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		Actor:            "coach-alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-alice", Issuer: "someone-else"},
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	subjectMismatch, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		Actor:            "coach-alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-bob", Issuer: tokenIssuer},
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{
		Actor:            "coach-alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "coach-alice", Issuer: tokenIssuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":          "not-a-token",
		"wrong issuer":     wrongIssuer,
		"subject mismatch": subjectMismatch,
		"alg none":         unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateToken(cfg, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := GetActor(context.Background())
	assert.False(t, ok)

	_, ok = GetActor(WithActor(context.Background(), ""))
	assert.False(t, ok)

	actor, ok := GetActor(WithActor(context.Background(), "coach-alice"))
	assert.True(t, ok)
	assert.Equal(t, "coach-alice", actor)
}
