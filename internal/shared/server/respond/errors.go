package respond

import (
	"github.com/gin-gonic/gin"

	"application-tracker/internal/shared/telemetry"
)

// ErrorResponse is the error envelope shared by every JSON endpoint.
type ErrorResponse struct {
	OK      bool        `json:"ok"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if token := c.GetString("applicationToken"); token != "" {
		fields["token"] = token
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		OK:      false,
		Error:   code,
		Message: message,
		Details: details,
	})
}
