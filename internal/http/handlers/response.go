package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/http/middleware"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Localized message, safe to show to visitors
	Message string `json:"message" example:"Perfil não encontrado."`
	// Per-field failures for validation_failed
	Details []validation.FieldError `json:"details,omitempty"`
}

func newErrorResponse(c *gin.Context, code, msg string, details []validation.FieldError) ErrorResponse {
	return ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   msg,
		Details:   details,
	}
}

// failDetails aborts with the envelope. 5xx responses are logged with the
// request-scoped logger, including any error attached to the context.
func failDetails(c *gin.Context, status int, code, msg string, details []validation.FieldError) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code)
		if last := c.Errors.Last(); last != nil {
			ev = ev.Err(last.Err)
		}
		ev.Msg("api error")
	}
	c.AbortWithStatusJSON(status, newErrorResponse(c, code, msg, details))
}

func fail(c *gin.Context, status int, code, msg string) {
	failDetails(c, status, code, msg, nil)
}

// Fail aborts with the envelope and a literal message. Router fallbacks use
// FailKey instead so the message is localized.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// FailKey aborts with the envelope, printing key in the request's language.
func FailKey(c *gin.Context, status int, code, key string, args ...any) {
	fail(c, status, code, i18n.T(c, key, args...))
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
