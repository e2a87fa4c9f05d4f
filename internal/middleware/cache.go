package middleware

import (
	"github.com/gin-gonic/gin"
)

// CacheControl sets the Cache-Control header. Analysis responses are
// computed from short-lived uploads, so the API uses "no-store".
func CacheControl(directive string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", directive)
		c.Next()
	}
}
