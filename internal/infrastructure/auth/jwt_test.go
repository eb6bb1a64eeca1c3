package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "teh-raja-test",
	})
}

func adminInput() GenerateTokenInput {
	return GenerateTokenInput{Username: "admin", DisplayName: "Admin", Role: RoleAdmin}
}

func TestNewJWTService_DefaultExpiration(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, 12*time.Hour, svc.Expiration())
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateToken(adminInput())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "Admin", claims.DisplayName)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "teh-raja-test", claims.Issuer)
}

func TestJWTService_UniqueJTI(t *testing.T) {
	svc := newTestJWTService()

	a, err := svc.GenerateToken(adminInput())
	require.NoError(t, err)
	b, err := svc.GenerateToken(adminInput())
	require.NoError(t, err)

	ca, err := svc.ValidateToken(a.AccessToken)
	require.NoError(t, err)
	cb, err := svc.ValidateToken(b.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestJWTService_GenerateRejectsBadInput(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.GenerateToken(GenerateTokenInput{Role: RoleCashier})
	assert.ErrorIs(t, err, ErrMissingUsername)

	_, err = svc.GenerateToken(GenerateTokenInput{Username: "x", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(adminInput())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateToken(adminInput())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessTokenExpiration: time.Minute})
	_, err = other.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Malformed(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsUnknownRole(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Username: "mallory",
		Role:     "owner",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{Username: "admin", Role: RoleAdmin}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute))}}
	assert.Equal(t, 10*time.Minute, c.RemainingTTL(now))
	assert.Equal(t, time.Duration(0), c.RemainingTTL(now.Add(time.Hour)))
	assert.Equal(t, time.Duration(0), (&Claims{}).RemainingTTL(now))
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleCashier.IsValid())
	assert.False(t, Role("").IsValid())
}
