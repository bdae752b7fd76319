package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// OperatorKeyHeader carries the shared operator secret.
	OperatorKeyHeader = "X-Admin-Key"
	operatorKeyQuery  = "adminKey"
	operatorCredKey   = "operatorCredential"
)

// OperatorCredential extracts the operator credential from the X-Admin-Key
// header, falling back to the adminKey query parameter. It never rejects a
// request; authorization is decided by the status service.
func OperatorCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := strings.TrimSpace(c.GetHeader(OperatorKeyHeader))
		if cred == "" {
			cred = strings.TrimSpace(c.Query(operatorKeyQuery))
		}
		c.Set(operatorCredKey, cred)
		c.Next()
	}
}

// OperatorCredentialFromContext returns the credential captured by OperatorCredential.
func OperatorCredentialFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(operatorCredKey)
}
