package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    apperr.Code `json:"code,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Degraded sends a success response whose secondary effect failed (e.g. user created, email not sent).
func Degraded(c *gin.Context, status int, data interface{}, warning string) {
	c.JSON(status, Body{Success: true, Data: data, Code: apperr.CodeDependencyFailure, Warning: warning})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err, Code: apperr.CodeInvalidInput})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err, Code: apperr.CodeUnauthenticated})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err, Code: apperr.CodeForbiddenRole})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err, Code: apperr.CodeNotFound})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err, Code: apperr.CodeInternal})
}

var statusByCode = map[apperr.Code]int{
	apperr.CodeNotFound:           http.StatusNotFound,
	apperr.CodeForbiddenRole:      http.StatusForbidden,
	apperr.CodeForbiddenOwnership: http.StatusForbidden,
	apperr.CodeForbiddenState:     http.StatusForbidden,
	apperr.CodeEmptyUpdate:        http.StatusBadRequest,
	apperr.CodeNoOpState:          http.StatusBadRequest,
	apperr.CodeInvalidInput:       http.StatusBadRequest,
	apperr.CodeConflict:           http.StatusConflict,
	apperr.CodeUnauthenticated:    http.StatusUnauthorized,
	apperr.CodeDependencyFailure:  http.StatusBadGateway,
}

// StatusFor returns the HTTP status for an error's taxonomy code.
func StatusFor(err error) int {
	if status, ok := statusByCode[apperr.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error sends err using its taxonomy code. Errors without a code become a generic 500
// so storage details never leak to clients.
func Error(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		_ = c.Error(err)
		Internal(c, "internal server error")
		return
	}
	c.JSON(StatusFor(err), Body{Success: false, Error: apperr.MessageOf(err), Code: code})
}
