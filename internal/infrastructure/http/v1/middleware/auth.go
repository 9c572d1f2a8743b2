package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"salesboard/internal/core/apperror"
)

// APIKeyAuth middleware checks the bearer token against a bcrypt hash of
// the service API key. Only the hash lives in configuration; the plain
// key is handed to dashboard clients out of band. An empty hash disables
// the check, for local development.
func APIKeyAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(parts[1])); err != nil {
			abortUnauthorized(c, "invalid api key")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
