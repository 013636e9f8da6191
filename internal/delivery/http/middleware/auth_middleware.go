// Package middleware contains Echo middleware for the HTTP delivery.
package middleware

import (
	"slices"
	"strings"

	"meditrack/internal/delivery/http/response"
	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "role"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the JWT access
// token. Token validation already guarantees a valid role claim; a token
// without one never reaches the handlers.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)

		return next(c)
	}
}

// RequireRole is a middleware factory that checks the authenticated role
// against an allow-list. It must be used AFTER the Authenticate middleware.
// A request whose role cannot be resolved is denied outright.
func (m *AuthMiddleware) RequireRole(allowed ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(entity.Role)
			if !ok || !role.IsValid() {
				return response.Forbidden(c, "ROLE_UNRESOLVED", "Permission denied: role information missing")
			}

			if !slices.Contains(allowed, role) {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: insufficient role")
			}

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from the echo context.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return id, ok
}

// GetRole extracts the authenticated role from the echo context.
func GetRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(ContextKeyRole).(entity.Role)

	return role, ok
}
