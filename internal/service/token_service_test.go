package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subculture-collective/clipper-sub007/internal/models"
	"github.com/subculture-collective/clipper-sub007/pkg/config"
	appErrors "github.com/subculture-collective/clipper-sub007/pkg/errors"
)

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, claims *models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	raw := signTestToken(t, "test-secret", jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleModerator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	raw := signTestToken(t, "test-secret", jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := svc.ValidateToken(raw)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret"})
	raw := signTestToken(t, "other-secret", jwt.SigningMethodHS256, &models.JWTClaims{UserID: "user-1"})

	_, err := svc.ValidateToken(raw)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
