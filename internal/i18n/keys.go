package i18n

import (
	"golang.org/x/text/message"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// Message keys. Every key has a pt-BR and an English translation.
const (
	KeyBadRequest         = "error.bad_request"
	KeyValidationFailed   = "error.validation_failed"
	KeyNotFound           = "error.not_found"
	KeyModelNotFound      = "error.model_not_found"
	KeyRouteNotFound      = "error.route_not_found"
	KeyMethodNotAllowed   = "error.method_not_allowed"
	KeyUpstreamFailed     = "error.upstream_failed"
	KeyUnauthorized       = "error.unauthorized"
	KeyTooManyRequests    = "error.too_many_requests"
	KeyInternal           = "error.internal"
	KeyPayloadTooLarge    = "error.payload_too_large"
	KeyEmailTaken         = "auth.email_taken"
	KeyInvalidLogin       = "auth.invalid_credentials"
	KeyEmptyPrompt        = "chat.empty_prompt"
	KeyPromptTooLong      = "chat.prompt_too_long"
	KeySendInFlight       = "chat.send_in_flight"
	KeyConversationGone   = "chat.conversation_not_found"
	KeyChatFailed         = "chat.send_failed"
	KeyCategoryModelo     = "category.modelo"
	KeyCategoryTradutora  = "category.tradutora"
	KeyCategoryMassagista = "category.massagista"
)

// CategoryKey returns the display-name key of c, or "" for unknown values.
func CategoryKey(c domain.Category) string {
	switch c {
	case domain.CategoryModelo:
		return KeyCategoryModelo
	case domain.CategoryTradutora:
		return KeyCategoryTradutora
	case domain.CategoryMassagista:
		return KeyCategoryMassagista
	}
	return ""
}

// CategoryLabel returns the plural display name of c in the printer's
// language ("Modelos", "Tradutoras", "Massagistas"). Unknown categories are
// returned verbatim.
func CategoryLabel(p *message.Printer, c domain.Category) string {
	key := CategoryKey(c)
	if key == "" {
		return string(c)
	}
	return p.Sprintf(key)
}
