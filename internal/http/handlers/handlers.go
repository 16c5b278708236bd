// Package handlers implements the public HTTP API of the directory: profile
// listing and lookup, the chat widget, and visitor accounts.
//
// Handlers are transport-thin. They parse input, call a service through one
// of the interfaces below, and render the result or the error envelope.
package handlers

import (
	"context"

	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/services"
	"github.com/tbourn/brasil-beauty-backend/internal/validation"
)

// ModelQueries is the profile read side (query.Cache in production).
type ModelQueries interface {
	ListModels(ctx context.Context, filters *validation.ModelFiltersDTO) ([]domain.Profile, *domain.ListMeta, error)
	GetModelByID(ctx context.Context, id string) (*domain.Profile, error)
	SearchModels(ctx context.Context, query string) ([]domain.Profile, error)
	ListByCategory(ctx context.Context) ([]services.CategoryGroup, error)
}

// ChatService runs chat conversations.
type ChatService interface {
	Start(ctx context.Context, owner string) string
	Send(ctx context.Context, conversationID, owner, text string) ([]domain.ChatMessage, error)
	Messages(ctx context.Context, conversationID, owner string, since int64) ([]domain.ChatMessage, error)
	RevealPlan(ctx context.Context, conversationID, owner string) ([]chat.Step, func() bool, error)
}

// AccountService manages visitor accounts and sessions.
type AccountService interface {
	Signup(ctx context.Context, in validation.AccountInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, sc domain.SessionContext) error
	Me(ctx context.Context, sc domain.SessionContext) (*domain.Account, error)
	UpdateName(ctx context.Context, sc domain.SessionContext, name string) (*domain.Account, error)
}

// Handlers groups every endpoint behind its service dependencies.
type Handlers struct {
	models   ModelQueries
	chat     ChatService
	accounts AccountService

	// MaxPromptRunes is quoted in the "message too long" error.
	MaxPromptRunes int
}

// New constructs Handlers bound to the given services.
func New(models ModelQueries, chatSvc ChatService, accounts AccountService) *Handlers {
	return &Handlers{models: models, chat: chatSvc, accounts: accounts, MaxPromptRunes: 2000}
}
