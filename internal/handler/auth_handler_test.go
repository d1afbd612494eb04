package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/service"
)

type mockAuthService struct {
	registerErr error
	loginErr    error
	response    dto.AuthResponse
}

func (m *mockAuthService) Register(_ context.Context, _ *service.Actor, _ dto.RegisterRequest) (dto.AuthResponse, error) {
	if m.registerErr != nil {
		return dto.AuthResponse{}, m.registerErr
	}
	return m.response, nil
}

func (m *mockAuthService) Login(_ context.Context, _ dto.LoginRequest) (dto.AuthResponse, error) {
	if m.loginErr != nil {
		return dto.AuthResponse{}, m.loginErr
	}
	return m.response, nil
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/auth"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestAuthHandlerRegisterSuccess(t *testing.T) {
	svc := &mockAuthService{response: dto.AuthResponse{
		Token: "token-123",
		User:  dto.UserResponse{ID: 1, Email: "new@example.com", Role: "FACULTY"},
	}}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/v1/auth/register", dto.RegisterRequest{
		Email: "new@example.com", Password: "password123", Name: "New User",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "token-123", response.Data.Token)
}

func TestAuthHandlerRegisterErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "email taken", err: service.ErrEmailTaken, statusCode: fiber.StatusConflict},
		{name: "admin only", err: service.ErrAdminOnlyRole, statusCode: fiber.StatusForbidden},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newAuthApp(&mockAuthService{registerErr: tc.err})
			resp := postJSON(t, app, "/api/v1/auth/register", dto.RegisterRequest{
				Email: "x@example.com", Password: "password123", Name: "X",
			})
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	app := newAuthApp(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	resp := postJSON(t, app, "/api/v1/auth/login", dto.LoginRequest{
		Email: "ghost@example.com", Password: "wrong",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Equal(t, "invalid credentials", response.Message)
}

func TestAuthHandlerRejectsMalformedBody(t *testing.T) {
	app := newAuthApp(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
