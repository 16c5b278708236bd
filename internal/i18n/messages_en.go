package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	en := language.AmericanEnglish
	for k, v := range map[string]string{
		KeyBadRequest:         "Invalid request.",
		KeyValidationFailed:   "Some fields are invalid.",
		KeyNotFound:           "Resource not found.",
		KeyModelNotFound:      "Profile not found.",
		KeyRouteNotFound:      "Route not found.",
		KeyMethodNotAllowed:   "Method not allowed.",
		KeyUpstreamFailed:     "Could not load the data. Please try again shortly.",
		KeyUnauthorized:       "Please sign in to continue.",
		KeyTooManyRequests:    "Too many requests. Please wait a moment.",
		KeyInternal:           "Internal error. Please try again.",
		KeyPayloadTooLarge:    "Payload too large.",
		KeyEmailTaken:         "This email is already registered.",
		KeyInvalidLogin:       "Incorrect email or password.",
		KeyEmptyPrompt:        "Please type a message.",
		KeySendInFlight:       "Please wait for the previous reply.",
		KeyConversationGone:   "Conversation not found or expired.",
		KeyChatFailed:         "Sorry, something went wrong while processing your message. Please try again.",
		KeyCategoryModelo:     "Models",
		KeyCategoryTradutora:  "Translators",
		KeyCategoryMassagista: "Masseuses",
	} {
		_ = message.SetString(en, k, v)
	}
	_ = message.SetString(en, KeyPromptTooLong, "Message too long (maximum %d characters).")
}
