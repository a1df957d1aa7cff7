package middleware

import "github.com/gin-gonic/gin"

// CORS is a permissive, dev-grade CORS handler. The gateway's real CORS
// policy is an external bootstrap concern (out of scope for this service);
// this exists only so the HTTP surface is reachable from a browser locally.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
