package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veritaxlabs/pintae_backend/config"
)

// AuthMiddleware enforces the shared API key on mutating routes. An empty
// configured key disables auth so local development works without setup.
// The key is accepted from X-API-Key or as a bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		required := config.APIKey()
		if required == "" {
			c.Next()
			return
		}

		provided := c.Request.Header.Get("X-API-Key")
		if provided == "" {
			auth := c.Request.Header.Get("Authorization")
			bearer := "Bearer "
			if strings.HasPrefix(auth, bearer) {
				provided = auth[len(bearer):]
			}
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(required)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
