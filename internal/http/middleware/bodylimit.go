package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is rejected up front with 413; chunked bodies are wrapped in
// http.MaxBytesReader so the first read past the cap fails.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "payload_too_large",
				"message":    i18n.T(c, i18n.KeyPayloadTooLarge),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
