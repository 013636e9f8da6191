package auth

import (
	"testing"
	"time"

	"meditrack/config"
	"meditrack/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"

	return cfg
}

func TestJWTService_GenerateAndValidateTokens(t *testing.T) {
	jwtService, err := NewJWTService(testConfig())
	require.NoError(t, err)

	userID := uuid.New()

	accessToken, refreshToken, err := jwtService.GenerateTokens(userID, entity.RolePharmacy)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, entity.RolePharmacy, claims.Role)
}

func TestJWTService_RefreshTokenRejectedAsAccess(t *testing.T) {
	jwtService, err := NewJWTService(testConfig())
	require.NoError(t, err)

	_, refreshToken, err := jwtService.GenerateTokens(uuid.New(), entity.RoleDistributor)
	require.NoError(t, err)

	// A refresh token must not pass access validation: wrong secret, wrong
	// type, and no role claim.
	_, err = jwtService.ValidateAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(testConfig())
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = jwtService.ValidateAccessToken("")
	assert.Error(t, err)
}

func TestJWTService_TokenWithoutRoleRejected(t *testing.T) {
	cfg := testConfig()
	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)

	// Forge an otherwise valid access token that carries no role claim.
	claims := jwt.MapClaims{
		"sub":  uuid.New().String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Minute).Unix(),
		"type": "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SecretKey.Access))
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrMissingRole)
}

func TestJWTService_TokenWithUnknownRoleRejected(t *testing.T) {
	cfg := testConfig()
	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":  uuid.New().String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Minute).Unix(),
		"type": "access",
		"role": "superuser",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SecretKey.Access))
	require.NoError(t, err)

	_, err = jwtService.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrMissingRole)
}

func TestJWTService_MissingSecrets(t *testing.T) {
	_, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
}
