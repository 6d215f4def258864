package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	CodeMissingToken            = "MISSING_TOKEN"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeRateLimited             = "RATE_LIMITED"
	CodeDatabaseError           = "DATABASE_ERROR"
	CodeUpstreamError           = "UPSTREAM_ERROR"
)

func SendError(c *gin.Context, status int, code, errorMessage, message string, details map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   errorMessage,
		Message: message,
		Code:    code,
		Details: details,
	})
}

func SendValidationError(c *gin.Context, message string, details map[string]string) {
	SendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", message, details)
}

func SendForbidden(c *gin.Context) {
	SendError(c, http.StatusForbidden, CodeInsufficientPermissions, "Forbidden",
		"Bạn không có quyền thực hiện thao tác này.", nil)
}

func SendNotFound(c *gin.Context) {
	SendError(c, http.StatusNotFound, CodeResourceNotFound, "Resource not found",
		"Không tìm thấy dữ liệu yêu cầu.", nil)
}

func SendUnauthorized(c *gin.Context, code, message string) {
	SendError(c, http.StatusUnauthorized, code, "Unauthorized", message, nil)
}

func SendDatabaseError(c *gin.Context) {
	SendError(c, http.StatusInternalServerError, CodeDatabaseError, "Database error",
		"Đã xảy ra lỗi hệ thống, vui lòng thử lại sau.", nil)
}
