// Package services – ChatService
//
// This file implements ChatService, which drives the chat widget: it opens
// in-memory conversations, forwards each visitor message to the chat API,
// classifies the reply into typed transcript messages and serves the static
// journey with its reveal schedule.
//
// A conversation allows one outstanding send. The visitor's message is
// appended immediately; the reply messages (or the apology on any failure)
// follow once the remote call returns.
//
// Observability: Send is OpenTelemetry-instrumented.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
)

// ChatAPI is the remote endpoint that answers visitor messages.
type ChatAPI interface {
	PostChat(ctx context.Context, message string) ([]byte, error)
}

// ChatService coordinates conversations and chat replies.
type ChatService struct {
	API     ChatAPI
	Store   *chat.Store
	Journey chat.Journey
	Delays  chat.Delays

	// MaxPromptRunes caps a visitor message; 0 disables the check.
	MaxPromptRunes int

	Now func() time.Time
}

// NewChatService constructs a ChatService with the embedded journey and the
// default reveal delays.
func NewChatService(api ChatAPI, store *chat.Store) *ChatService {
	return &ChatService{
		API:            api,
		Store:          store,
		Journey:        chat.DefaultJourney(),
		Delays:         chat.DefaultDelays,
		MaxPromptRunes: 2000,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a conversation owned by owner ("" for anonymous visitors) and
// returns its ID.
func (s *ChatService) Start(_ context.Context, owner string) string {
	return s.Store.Create(owner).ID
}

// Send appends the visitor message and the classified reply to the
// conversation and returns every message appended by this call.
//
// On a transport or parse failure the apology message is appended and the
// returned slice (visitor message plus apology) comes back together with the
// error, so callers can still render the transcript.
func (s *ChatService) Send(ctx context.Context, conversationID, owner, text string) ([]domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(text) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	conv, ok := s.Store.Get(conversationID, owner)
	if !ok {
		return nil, ErrConversationNotFound
	}
	if !conv.BeginSend() {
		return nil, ErrSendInFlight
	}
	defer conv.EndSend()

	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.Int("prompt.runes", utf8.RuneCountInString(text)),
		),
	)
	defer span.End()

	out := conv.Append(chat.UserMessage(text, s.Now()))

	replies, err := s.reply(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat send failed")
		out = append(out, conv.Append(chat.Apology(s.Now()))...)
		return out, err
	}
	span.SetAttributes(attribute.Int("reply.messages", len(replies)))
	return append(out, conv.Append(replies...)...), nil
}

func (s *ChatService) reply(ctx context.Context, text string) ([]domain.ChatMessage, error) {
	body, err := s.API.PostChat(ctx, text)
	if err != nil {
		return nil, err
	}
	msgs, err := chat.ClassifyBody(body, s.Now())
	if err != nil {
		return nil, &remote.MalformedResponseError{Op: remote.OpChat, Reason: "undecodable chat reply", Index: -1, Err: err}
	}
	return msgs, nil
}

// Messages returns the conversation's dynamic messages with an ID greater
// than since.
func (s *ChatService) Messages(_ context.Context, conversationID, owner string, since int64) ([]domain.ChatMessage, error) {
	conv, ok := s.Store.Get(conversationID, owner)
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv.Since(since), nil
}

// RevealPlan returns the journey reveal steps for a conversation, and a skip check
// that reports whether a dynamic message has arrived since. An empty
// conversationID plans for a visitor that has not opened one yet.
func (s *ChatService) RevealPlan(_ context.Context, conversationID, owner string) ([]chat.Step, func() bool, error) {
	if conversationID == "" {
		return chat.Schedule(s.Journey.Messages, s.Delays, false), nil, nil
	}
	conv, ok := s.Store.Get(conversationID, owner)
	if !ok {
		return nil, nil, ErrConversationNotFound
	}
	return chat.Schedule(s.Journey.Messages, s.Delays, conv.HasDynamic()), conv.HasDynamic, nil
}
