package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpsKeyMiddleware guards machine-to-machine endpoints, such as the
// reconcile trigger used by external schedulers, with the X-API-Key header.
// An empty configured key disables the endpoints.
func OpsKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				ErrorBody{Error: ErrorDetail{Code: "OPS_NOT_CONFIGURED", Message: "Operations endpoints are not configured"}})
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorBody{Error: ErrorDetail{Code: "INVALID_API_KEY", Message: "Invalid or missing API key"}})
			return
		}
		c.Next()
	}
}
