package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventstime/core/internal/pkg/apperr"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Paged sends a paginated list response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: pagination})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abort(c, http.StatusUnauthorized, string(apperr.Unauthorized))
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, message)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, message)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abort(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	c.Header("Retry-After", "1")
	abort(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 with a fixed message; internals never leak to
// the client.
func InternalError(c *gin.Context) {
	abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
}

// Error translates a domain error into its HTTP status. NotFound-class kinds
// map to 404, login/registration conflicts to their dedicated codes, and any
// unclassified domain error to 400. Non-domain errors become a generic 500.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case "":
		InternalError(c)
		return
	case apperr.LoginFailed:
		abort(c, http.StatusBadRequest, string(kind))
	case apperr.EmailAlreadyExist:
		abort(c, http.StatusConflict, string(kind))
	case apperr.Unauthorized:
		abort(c, http.StatusUnauthorized, string(kind))
	case apperr.UserNotFound, apperr.GroupNotFound, apperr.EventNotFound,
		apperr.StandNotFound, apperr.StandCategoryNotFound,
		apperr.ProductNotFound, apperr.ProductCategoryNotFound,
		apperr.ProductFileNotFound, apperr.SessionNotFound:
		abort(c, http.StatusNotFound, string(kind))
	default:
		abort(c, http.StatusBadRequest, string(kind))
	}
}

// AuthError is the auth-boundary variant of Error: every lookup or token
// failure is reported as the same 401 so responses never reveal whether an
// account exists or why a refresh token was rejected.
func AuthError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.LoginFailed, apperr.InvalidDate:
		abort(c, http.StatusBadRequest, string(apperr.KindOf(err)))
	case apperr.EmailAlreadyExist:
		abort(c, http.StatusConflict, string(apperr.EmailAlreadyExist))
	case apperr.UserNotFound, apperr.Unauthorized:
		abort(c, http.StatusUnauthorized, string(apperr.KindOf(err)))
	case "":
		InternalError(c)
	default:
		abort(c, http.StatusForbidden, string(apperr.KindOf(err)))
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}

// ParamID reads a numeric path parameter. On a malformed value it aborts
// with 400 and returns false.
func ParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}
