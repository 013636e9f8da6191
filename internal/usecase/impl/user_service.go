package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/domain/repository"
	"meditrack/internal/domain/service"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	TokenSvc service.TokenService
	Logger   *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		tokenSvc: params.TokenSvc,
		logger:   params.Logger,
	}
}

// Register creates a user with their role fixed at signup. Admin accounts
// are provisioned out of band, never through this path.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.AuthOutput, error) {
	if !input.Role.IsValid() {
		return nil, domainerrors.ErrRoleUnresolved
	}
	if input.Role == entity.RoleAdmin {
		return nil, domainerrors.ErrForbidden.WithDetails("admin accounts cannot self-register")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        email,
		Organization: input.Organization,
		Role:         input.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.logger.Info("User registered",
		slog.Any("userID", user.ID),
		slog.String("role", user.Role.String()),
	)

	return srv.issueTokens(user)
}

// Login authenticates by email and password. Unknown email and wrong
// password collapse into the same error so the endpoint does not leak
// which emails exist.
func (srv *userService) Login(ctx context.Context, email, password string) (*usecase.AuthOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := srv.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issueTokens(user)
}

// Profile returns the user's account data.
func (srv *userService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by ID")
	}

	return user, nil
}

func (srv *userService) issueTokens(user *entity.User) (*usecase.AuthOutput, error) {
	accessToken, refreshToken, err := srv.tokenSvc.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	return &usecase.AuthOutput{
		User:          user,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		DashboardPath: user.Role.DashboardPath(),
	}, nil
}
