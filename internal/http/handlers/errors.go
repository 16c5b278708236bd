// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, lowercase snake_case strings that clients branch on; the
// accompanying message is localized (pt-BR by default) and safe to show to
// visitors. Upstream failure messages are deliberately generic; the real
// cause goes to the logs under the request ID.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "validation_failed",
//	  "message": "Alguns campos estão inválidos.",
//	  "details": [{"field": "limit", "reason": "constraint", "message": "must be at most 100"}]
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
	"github.com/tbourn/brasil-beauty-backend/internal/services"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeUpstream         = "upstream_failed"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// statusClientClosed is logged when the visitor went away mid-request.
const statusClientClosed = 499

// problem is how an error is rendered: status, code and a catalog key.
type problem struct {
	status  int
	code    string
	key     string
	args    []any
	details []validation.FieldError
}

// classify maps service, validation and transport errors onto the envelope.
// Anything unrecognised is an internal error.
func (h *Handlers) classify(err error) problem {
	var (
		ve *validation.ValidationError
		te *remote.TransportError
		me *remote.MalformedResponseError
	)
	switch {
	case errors.As(err, &ve):
		return problem{status: http.StatusBadRequest, code: ErrCodeValidation, key: i18n.KeyValidationFailed, details: ve.Fields}
	case errors.Is(err, services.ErrEmptyPrompt):
		return problem{status: http.StatusBadRequest, code: ErrCodeBadRequest, key: i18n.KeyEmptyPrompt}
	case errors.Is(err, services.ErrTooLong):
		return problem{status: http.StatusBadRequest, code: ErrCodeBadRequest, key: i18n.KeyPromptTooLong, args: []any{h.MaxPromptRunes}}
	case errors.Is(err, services.ErrConversationNotFound):
		return problem{status: http.StatusNotFound, code: ErrCodeNotFound, key: i18n.KeyConversationGone}
	case errors.Is(err, services.ErrNotFound):
		return problem{status: http.StatusNotFound, code: ErrCodeNotFound, key: i18n.KeyModelNotFound}
	case errors.Is(err, services.ErrSendInFlight):
		return problem{status: http.StatusConflict, code: ErrCodeConflict, key: i18n.KeySendInFlight}
	case errors.Is(err, services.ErrEmailTaken):
		return problem{status: http.StatusConflict, code: ErrCodeConflict, key: i18n.KeyEmailTaken}
	case errors.Is(err, services.ErrInvalidCredentials):
		return problem{status: http.StatusUnauthorized, code: ErrCodeUnauthorized, key: i18n.KeyInvalidLogin}
	case errors.Is(err, services.ErrUnauthorized):
		return problem{status: http.StatusUnauthorized, code: ErrCodeUnauthorized, key: i18n.KeyUnauthorized}
	case errors.Is(err, context.DeadlineExceeded):
		return problem{status: http.StatusGatewayTimeout, code: ErrCodeUpstream, key: i18n.KeyUpstreamFailed}
	case errors.As(err, &te), errors.As(err, &me):
		return problem{status: http.StatusBadGateway, code: ErrCodeUpstream, key: i18n.KeyUpstreamFailed}
	}
	return problem{status: http.StatusInternalServerError, code: ErrCodeInternal, key: i18n.KeyInternal}
}

// respondError renders err with the standard envelope. The raw error is
// attached to the gin context so the access log records it.
func (h *Handlers) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, context.Canceled) {
		c.AbortWithStatus(statusClientClosed)
		return
	}
	p := h.classify(err)
	failDetails(c, p.status, p.code, i18n.T(c, p.key, p.args...), p.details)
}
