package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meditrack/internal/delivery/http/validator"
	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserUsecase struct {
	output *usecase.AuthOutput
	err    error
	input  *usecase.RegisterUserInput
}

func (s *stubUserUsecase) Register(_ context.Context, input *usecase.RegisterUserInput) (*usecase.AuthOutput, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}

	return s.output, nil
}

func (s *stubUserUsecase) Login(_ context.Context, _, _ string) (*usecase.AuthOutput, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.output, nil
}

func (s *stubUserUsecase) Profile(_ context.Context, _ uuid.UUID) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.output.User, nil
}

func newUserHandlerContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestRegisterHandler(t *testing.T) {
	user := &entity.User{
		ID:    uuid.New(),
		Name:  "Chen Wei",
		Email: "chen@pharma.example.com",
		Role:  entity.RoleManufacturer,
	}
	stub := &stubUserUsecase{
		output: &usecase.AuthOutput{
			User:          user,
			AccessToken:   "access-token",
			RefreshToken:  "refresh-token",
			DashboardPath: "/manufacturer",
		},
	}
	h := &UserHandler{
		userUC: stub,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	c, rec := newUserHandlerContext(t, `{
		"name": "Chen Wei",
		"email": "chen@pharma.example.com",
		"password": "s3cret-pass",
		"organization": "Wei Pharma",
		"role": "manufacturer"
	}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.input)
	assert.Equal(t, entity.RoleManufacturer, stub.input.Role)
	assert.Contains(t, rec.Body.String(), `"dashboard_path":"/manufacturer"`)
}

func TestRegisterHandler_ValidationError(t *testing.T) {
	h := &UserHandler{
		userUC: &stubUserUsecase{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Password below the minimum length never reaches the usecase.
	c, rec := newUserHandlerContext(t, `{
		"name": "Chen Wei",
		"email": "chen@pharma.example.com",
		"password": "short",
		"organization": "Wei Pharma",
		"role": "manufacturer"
	}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	stub := &stubUserUsecase{err: domainerrors.ErrUserAlreadyExists}
	h := &UserHandler{
		userUC: stub,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	c, rec := newUserHandlerContext(t, `{
		"name": "Chen Wei",
		"email": "chen@pharma.example.com",
		"password": "s3cret-pass",
		"organization": "Wei Pharma",
		"role": "manufacturer"
	}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_ALREADY_EXISTS")
}
