package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every JSON endpoint writes.
type APIResponse struct {
	Success    bool        `json:"success" example:"true"`
	StatusCode int         `json:"statusCode" example:"200"`
	Message    string      `json:"message" example:"ok"`
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty" example:"BOOK_NOT_FOUND"`
	Error      string      `json:"error,omitempty"`
}

func write(c *gin.Context, status int, body APIResponse) {
	body.StatusCode = status
	body.Success = status < http.StatusBadRequest
	c.JSON(status, body)
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message string) {
	write(c, http.StatusOK, APIResponse{Message: message, Data: data})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message string) {
	write(c, http.StatusCreated, APIResponse{Message: message, Data: data})
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	code := ""
	if len(errorCode) > 0 {
		code = errorCode[0]
	}

	write(c, statusCode, APIResponse{Message: message, Code: code})
}

// ErrorWithData sends an error response that still carries a data payload.
func ErrorWithData(c *gin.Context, statusCode int, message, code string, data interface{}) {
	write(c, statusCode, APIResponse{Message: message, Code: code, Data: data})
}

// ErrorWithDetail sends an error response with a detail string in the error field.
func ErrorWithDetail(c *gin.Context, statusCode int, message, code, detail string) {
	write(c, statusCode, APIResponse{Message: message, Code: code, Error: detail})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// TooManyRequests sends a 429 with retry information in data
func TooManyRequests(c *gin.Context, message string, data interface{}) {
	ErrorWithData(c, http.StatusTooManyRequests, message, "RATE_LIMITED", data)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// ServerError sends a 500. With debug set the cause goes into the error field.
func ServerError(c *gin.Context, message, code string, err error, debug bool) {
	if debug && err != nil {
		ErrorWithDetail(c, http.StatusInternalServerError, message, code, err.Error())
		return
	}
	InternalServerError(c, message, code)
}

// ServiceUnavailable sends a 503 Service Unavailable error
func ServiceUnavailable(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusServiceUnavailable, message, errorCode...)
}
