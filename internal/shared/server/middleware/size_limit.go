package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields and part headers around the file.
const multipartOverhead = int64(64 * 1024)

// SizeLimit caps the request body at maxFileBytes plus multipart overhead.
// Reads past the cap fail with *http.MaxBytesError, which handlers map to 413.
func SizeLimit(maxFileBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFileBytes+multipartOverhead)
		c.Next()
	}
}
