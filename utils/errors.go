package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithUnsupportedType sends a 415 Unsupported Media Type error
func RespondWithUnsupportedType(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnsupportedMediaType, "unsupported_type", message, nil)
}

// RespondWithRateLimited sends a 429 when the AI provider throttled us
func RespondWithRateLimited(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, "rate_limited",
		"Rate limit exceeded. Please try again later.", nil)
}

// RespondWithQuotaExhausted sends a 402 when AI credits ran out
func RespondWithQuotaExhausted(c *gin.Context) {
	RespondWithError(c, http.StatusPaymentRequired, "quota_exhausted",
		"AI credits exhausted. Please add credits to your workspace.", nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}
