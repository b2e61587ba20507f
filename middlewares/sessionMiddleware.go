package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
)

// SessionMiddleware checks opaque session tokens issued at login against
// redis. A revoked or expired session is rejected even when its JWT is still
// within lifespan.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		email, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyToken, token)
		ctx = context.WithValue(ctx, utils.ContextKeyUserEmail, email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
