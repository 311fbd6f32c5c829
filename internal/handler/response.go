package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Soham-droid-pixel/MedVault2.0/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// StatusForError maps a classified application error to an HTTP status,
// falling back to the given default for unclassified errors.
func StatusForError(err error, fallback int) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return fallback
	}
	switch appErr.Code {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// UserIDHeader carries the acting user, set by the upstream auth gateway.
const UserIDHeader = "X-User-ID"

// UserID extracts the acting user id or aborts with 401.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse("missing user identity"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse(fmt.Sprintf("invalid user identity: %v", err)))
		return uuid.Nil, false
	}
	return id, true
}
