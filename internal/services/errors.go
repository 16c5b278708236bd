// Package services defines the business logic for profile queries, the chat
// widget and visitor accounts. This file centralizes service-level error
// values so that they can be returned consistently by service methods and
// checked by callers with errors.Is / errors.As.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Chat-related errors.
var (
	// ErrEmptyPrompt is returned when a chat message is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a chat message exceeds the configured
	// maximum rune length.
	ErrTooLong = errors.New("prompt too long")

	// ErrSendInFlight is returned when a conversation already has an
	// outstanding send; only one may be in flight at a time.
	ErrSendInFlight = errors.New("a message is already being sent")

	// ErrConversationNotFound indicates the conversation does not exist, has
	// expired, or belongs to another session.
	ErrConversationNotFound = errors.New("conversation not found")
)

// Account-related errors.
var (
	// ErrEmailTaken is returned by Signup when the email is registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned when a session token is missing, invalid,
	// expired or revoked.
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind classifies domain errors raised at the use-case boundary.
type Kind string

// KindNotFound marks a direct lookup of an entity that does not exist.
const KindNotFound Kind = "NotFound"

// NotFoundError reports that a directly requested entity does not exist.
// It is only raised for single-entity lookups, never for list or search.
type NotFoundError struct {
	Kind   Kind
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
