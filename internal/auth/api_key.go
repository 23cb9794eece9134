package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyMiddleware guards a group with a static X-API-Key only. The admin
// routes (CSV import, purge) use it; user tokens are not accepted there.
func APIKeyMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" || !validAPIKey(c, expected) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "invalid API key",
			})
			return
		}
		c.Set(CtxMethod, "api_key")
		c.Next()
	}
}

func validAPIKey(c *gin.Context, expected string) bool {
	key := c.GetHeader("X-API-Key")
	return key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}
