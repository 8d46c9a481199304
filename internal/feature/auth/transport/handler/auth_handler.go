// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"papertrade/internal/feature/auth/transport/http/dto"
	"papertrade/internal/feature/auth/usecase"
	"papertrade/internal/platform/http/respond"
	"papertrade/internal/shared/apperror"
)

// AuthUsecase は認証操作のユースケースを定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, email, password string) (uint, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler serves /signup and /login.
type AuthHandler struct {
	auth AuthUsecase
}

func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// authFailure is the public answer for one class of usecase error.
type authFailure struct {
	target  error
	status  int
	code    string
	kind    apperror.Kind
	message string
}

// メール重複と資格情報の誤りは、列挙攻撃を防ぐため理由を伏せた固定文言で返す
var (
	signupFailures = []authFailure{
		{usecase.ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD", apperror.KindInvalid, "password is too short"},
		{usecase.ErrEmailAlreadyExists, http.StatusConflict, "SIGNUP_FAILED", apperror.KindRejected, "signup failed"},
	}
	loginFailures = []authFailure{
		{usecase.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", apperror.KindRejected, "invalid email or password"},
	}
	internalFailure = authFailure{status: http.StatusInternalServerError, code: "AUTH_FAILED", kind: apperror.KindInternal, message: "internal error"}
)

func classify(err error, table []authFailure) authFailure {
	for _, f := range table {
		if errors.Is(err, f.target) {
			return f
		}
	}
	return internalFailure
}

func (h *AuthHandler) fail(c *gin.Context, op string, err error, table []authFailure) {
	f := classify(err, table)
	if f.status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" rejected", "code", f.code, "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(f.status, respond.ErrorResponse{Error: f.message, Code: f.code, Kind: f.kind.String()})
}

// bindJSON decodes the body into T, answering 400 on failure.
func bindJSON[T any](c *gin.Context, op string) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
		respond.BadRequest(c, "invalid request")
		return req, false
	}
	return req, true
}

// Signup は201と新規ユーザーのIDを返します。
// 入力不正とパスワード長不足は400、メール重複は409です。
func (h *AuthHandler) Signup(c *gin.Context) {
	req, ok := bindJSON[dto.SignupReq](c, "signup")
	if !ok {
		return
	}
	id, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "signup", err, signupFailures)
		return
	}
	slog.Info("user signed up", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.SignupResponse{Message: "ok", UserID: id})
}

// Login はJWTを返します。未登録のメールと誤ったパスワードはどちらも401です。
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindJSON[dto.LoginReq](c, "login")
	if !ok {
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login", err, loginFailures)
		return
	}
	slog.Info("user logged in", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
