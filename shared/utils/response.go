package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentiva/go-rental-saas/shared/lifecycle"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// ForbiddenResponse sends a 403 Forbidden response
func ForbiddenResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// ConflictResponse sends a 409 Conflict response
func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// ServiceUnavailableResponse sends a 503 Service Unavailable response
func ServiceUnavailableResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, message)
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c *gin.Context, message string, data interface{}) {
	SuccessResponse(c, http.StatusCreated, message, data)
}

// OKResponse sends a 200 OK response
func OKResponse(c *gin.Context, message string, data interface{}) {
	SuccessResponse(c, http.StatusOK, message, data)
}

// LifecycleErrorResponse maps lifecycle sentinel errors onto HTTP statuses:
// not-found errors to 404, invalid arguments to 400, concurrent-modification
// conflicts to 409, everything else to 500.
func LifecycleErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrTenantNotFound),
		errors.Is(err, lifecycle.ErrSubscriptionNotFound),
		errors.Is(err, lifecycle.ErrPlanNotFound),
		errors.Is(err, lifecycle.ErrPaymentNotFound):
		NotFoundResponse(c, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidDuration),
		errors.Is(err, lifecycle.ErrInvalidAmount),
		errors.Is(err, lifecycle.ErrInvalidStatus):
		BadRequestResponse(c, err.Error())
	case errors.Is(err, lifecycle.ErrConflict):
		ConflictResponse(c, err.Error())
	default:
		InternalServerErrorResponse(c, "Internal server error")
	}
}
