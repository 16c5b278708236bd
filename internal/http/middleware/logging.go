// Package middleware holds the Gin middleware shared by every route: request
// correlation, redacted access logging, panic recovery, metrics, rate
// limiting, security headers, body limits and session hydration.
//
// Recommended order (see httpapi.RegisterRoutes):
//
//	RequestID → RedactingLogger → Recovery → BodyLimit → Metrics →
//	Session → RateLimiter → CORS → SecurityHeaders
//
// RequestID must come first so every log line and error envelope carries the
// same correlation ID. Session must run before the rate limiter so signed-in
// visitors are limited per account instead of per IP.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// loggerKey holds the request-scoped *zerolog.Logger.
	loggerKey = "logger"
	// requestIDHeader carries the correlation ID in and out.
	requestIDHeader = "X-Request-ID"
	// maxRequestIDLen bounds client-supplied IDs; longer values are replaced.
	maxRequestIDLen = 128
)

// RequestID reuses the caller's X-Request-ID when it is present and sane,
// otherwise it mints a UUIDv4. The ID is echoed on the response and stored
// in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID of the current request, or "".
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		return asString(v)
	}
	return c.Writer.Header().Get(requestIDHeader)
}

// Recovery turns a panic into the standard JSON 500 envelope and logs the
// stack with the request ID. If the handler already started writing (an SSE
// stream, for instance) only the status is recorded.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    i18n.T(c, i18n.KeyInternal),
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger installed by RedactingLogger,
// or the global logger when none is attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes for logging, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
