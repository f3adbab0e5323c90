package respond

import (
	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/telemetry"
)

// Error codes shared by handlers.
const (
	CodeValidation          = "validation_error"
	CodeUnsupportedFileType = "unsupported_file_type"
	CodeUnsupportedTone     = "unsupported_tone"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeTooLarge            = "payload_too_large"
	CodeExtractionFailed    = "extraction_failed"
	CodeGenerationFailed    = "generation_failed"
	CodePersistenceFailed   = "persistence_failed"
	CodeInternal            = "internal"
)

// Error sends an error envelope and aborts the chain.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Data:    nil,
		Message: message,
		Code:    code,
	})
}
