// Package respond はハンドラー共通のJSONレスポンスとエラー変換を提供します。
package respond

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"papertrade/internal/shared/apperror"
)

// CodeNotFound is the rejected-kind code answered with 404 instead of 422.
const CodeNotFound = "NOT_FOUND"

// ErrorResponse はエラーレスポンスの共通形式です。
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse は単純なメッセージレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	e, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apperror.KindInvalid:
		return http.StatusBadRequest
	case apperror.KindRejected:
		if e.Code == CodeNotFound {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	case apperror.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error はerrをHTTPステータスとエラーボディに変換して書き込みます。
// 分類されていないエラーは内容を公開せず500を返します。
func Error(c *gin.Context, err error) {
	status := Status(err)
	e, ok := apperror.As(err)
	if !ok {
		slog.Error("unclassified error", "path", c.FullPath(), "error", err)
		c.JSON(status, ErrorResponse{Error: "internal error", Kind: apperror.KindInternal.String()})
		return
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "code", e.Code, "error", err)
	} else {
		slog.Warn("request rejected", "path", c.FullPath(), "code", e.Code, "error", err)
	}
	c.JSON(status, ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Kind:    e.Kind.String(),
		Details: e.Details,
	})
}

// BadRequest はリクエストのバインドに失敗した場合の400を書き込みます。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "INVALID_REQUEST", Kind: apperror.KindInvalid.String()})
}
