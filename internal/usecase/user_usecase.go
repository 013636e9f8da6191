package usecase

import (
	"context"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterUserInput carries a signup request. The role is fixed at signup
// and cannot be changed afterwards through any self-service path.
type RegisterUserInput struct {
	Name         string
	Email        string
	Password     string
	Organization string
	Role         entity.Role
}

// AuthOutput is returned on successful registration or login.
type AuthOutput struct {
	User          *entity.User `json:"user"`
	AccessToken   string       `json:"access_token"`
	RefreshToken  string       `json:"refresh_token"`
	DashboardPath string       `json:"dashboard_path"`
}

// UserUsecase defines identity use cases: signup, login, and profile lookup.
type UserUsecase interface {
	// Register creates a user with their immutable role and returns tokens.
	// Admin accounts are provisioned out of band; self-signup as admin is
	// rejected.
	Register(ctx context.Context, input *RegisterUserInput) (*AuthOutput, error)

	// Login authenticates by email and password.
	Login(ctx context.Context, email, password string) (*AuthOutput, error)

	// Profile returns the user's account data.
	Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
