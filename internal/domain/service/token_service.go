package service

import (
	"time"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// Claims are the authenticated facts extracted from a validated token. The
// role comes from the token itself so privileged routes never need a second
// lookup, and a token without a valid role claim fails validation outright;
// there is no default capability.
type Claims struct {
	UserID uuid.UUID
	Role   entity.Role
}

// TokenService defines the interface for generating and validating JWTs.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a user.
	GenerateTokens(userID uuid.UUID, role entity.Role) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks an access token and returns its claims.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// GetRefreshTokenDuration returns the configured refresh token lifetime.
	GetRefreshTokenDuration() time.Duration
}
