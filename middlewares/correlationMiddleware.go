package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veritaxlabs/pintae_backend/utils"
)

const CorrelationHeader = "X-Correlation-Id"

// CorrelationMiddleware tags every request with a correlation id: the
// caller's own when supplied, a fresh one otherwise. The id rides the request
// context into workflows and is echoed back on the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get(CorrelationHeader)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(CorrelationHeader, correlationId)
		c.Next()
	}
}
