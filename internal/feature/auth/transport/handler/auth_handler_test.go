package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"papertrade/internal/feature/auth/usecase"
)

// mockAuthUsecase はAuthUsecaseのモック実装です。
type mockAuthUsecase struct {
	SignupFunc func(ctx context.Context, email, password string) (uint, error)
	LoginFunc  func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthUsecase) Signup(ctx context.Context, email, password string) (uint, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	return 1, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return "", errors.New("login failed")
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, body gin.H) (*httptest.ResponseRecorder, gin.H) {
	t.Helper()
	router := gin.New()
	router.POST(path, h)

	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var res gin.H
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestAuthHandler_Signup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignupFunc func(ctx context.Context, email, password string) (uint, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(context.Context, string, string) (uint, error) { return 3, nil },
			expectedStatus: http.StatusCreated,
			expectedBody:   gin.H{"message": "ok", "userId": float64(3)},
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: short password",
			requestBody:    gin.H{"email": "test@example.com", "password": "short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "failure: duplicate email (usecase error)",
			requestBody: gin.H{"email": "existing@example.com", "password": "password123"},
			mockSignupFunc: func(context.Context, string, string) (uint, error) {
				return 0, fmt.Errorf("create user: %w", usecase.ErrEmailAlreadyExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   gin.H{"error": "signup failed", "code": "SIGNUP_FAILED", "kind": "rejected"},
		},
		{
			name:        "failure: weak password rejected by usecase",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(context.Context, string, string) (uint, error) {
				return 0, fmt.Errorf("%w: need at least 12 characters", usecase.ErrWeakPassword)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "password is too short", "code": "WEAK_PASSWORD", "kind": "invalid"},
		},
		{
			name:        "failure: unexpected error is hidden",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(context.Context, string, string) (uint, error) {
				return 0, errors.New("failed to hash password: boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal error", "code": "AUTH_FAILED", "kind": "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockUC := &mockAuthUsecase{SignupFunc: func(ctx context.Context, email, password string) (uint, error) {
				called = true
				if tt.mockSignupFunc == nil {
					return 1, nil
				}
				return tt.mockSignupFunc(ctx, email, password)
			}}

			w, res := postJSON(t, NewAuthHandler(mockUC).Signup, "/signup", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody == nil {
				assert.False(t, called, "usecase must not be called on validation failure")
				assert.Equal(t, "invalid request", res["error"])
				assert.Equal(t, "INVALID_REQUEST", res["code"])
				return
			}
			assert.Equal(t, tt.expectedBody, res)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, email, password string) (string, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:           "success: user login",
			requestBody:    gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc:  func(context.Context, string, string) (string, error) { return "dummy-jwt-token", nil },
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"token": "dummy-jwt-token"},
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "test@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: invalid credentials (usecase error)",
			requestBody:    gin.H{"email": "wrong@example.com", "password": "wrong-password"},
			mockLoginFunc:  func(context.Context, string, string) (string, error) { return "", usecase.ErrInvalidCredentials },
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "invalid email or password", "code": "INVALID_CREDENTIALS", "kind": "rejected"},
		},
		{
			name:        "failure: token signing error is hidden",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(context.Context, string, string) (string, error) {
				return "", errors.New("failed to generate token: failed to sign token")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal error", "code": "AUTH_FAILED", "kind": "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{LoginFunc: tt.mockLoginFunc}

			w, res := postJSON(t, NewAuthHandler(mockUC).Login, "/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody == nil {
				assert.Equal(t, "invalid request", res["error"])
				return
			}
			assert.Equal(t, tt.expectedBody, res)
		})
	}
}
