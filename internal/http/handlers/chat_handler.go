// Chat HTTP handlers.
//
// This file exposes the chat widget endpoints:
//   - POST /chat/conversations                 (open a conversation)
//   - GET  /chat/conversations/{id}/messages   (incremental refresh)
//   - POST /chat/conversations/{id}/messages   (send a message)
//   - GET  /chat/journey                       (scripted reveal, SSE)
//
// Conversations opened while signed in belong to the account; anonymous ones
// are reachable by ID alone.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/http/middleware"
	"github.com/tbourn/brasil-beauty-backend/internal/i18n"
	"github.com/tbourn/brasil-beauty-backend/internal/utils"
)

var errStreamClosed = errors.New("event stream closed by client")

// ConversationResponse carries a new conversation's ID.
type ConversationResponse struct {
	ID string `json:"id" example:"0b6a7c1e-5f1d-4c1e-9a59-0d8f1d3b2a10"`
}

// SendMessageRequest is the visitor's chat input.
type SendMessageRequest struct {
	Message string `json:"message" example:"Quero ver modelos em São Paulo"`
}

// MessagesResponse lists transcript entries in ID order.
type MessagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// SendFailedResponse is returned when the chat API failed: the envelope plus
// the messages that were still appended (the visitor's text and the apology).
type SendFailedResponse struct {
	ErrorResponse
	Messages []domain.ChatMessage `json:"messages"`
}

func owner(c *gin.Context) string { return middleware.SessionFrom(c).AccountID }

func nonNilMessages(m []domain.ChatMessage) []domain.ChatMessage {
	if m == nil {
		return []domain.ChatMessage{}
	}
	return m
}

// StartConversation godoc
// @ID          startConversation
// @Summary     Open a chat conversation
// @Tags        Chat
// @Produce     json
// @Param       Authorization header string false "Bearer token (optional)"
// @Success     201  {object}  handlers.ConversationResponse
// @Router      /chat/conversations [post]
func (h *Handlers) StartConversation(c *gin.Context) {
	ok(c, http.StatusCreated, ConversationResponse{ID: h.chat.Start(c.Request.Context(), owner(c))})
}

// ListMessages godoc
// @ID          listChatMessages
// @Summary     Read a conversation
// @Description Returns the dynamic messages with an ID greater than since.
// @Tags        Chat
// @Produce     json
// @Param       id     path   string  true   "Conversation ID"
// @Param       since  query  int     false  "Last message ID already held"  minimum(0) default(0)
// @Success     200  {object}  handlers.MessagesResponse
// @Failure     404  {object}  handlers.ErrorResponse "Conversation not found or expired"
// @Router      /chat/conversations/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	since := utils.Int64Default(c.Query("since"), 0)
	msgs, err := h.chat.Messages(c.Request.Context(), c.Param("id"), owner(c), since)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, MessagesResponse{Messages: nonNilMessages(msgs)})
}

// SendMessage godoc
// @ID          sendChatMessage
// @Summary     Send a chat message
// @Description Appends the visitor message and the classified reply. When the chat API fails the apology is appended and returned with a 502.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       id    path  string                       true  "Conversation ID"
// @Param       body  body  handlers.SendMessageRequest  true  "Message"
// @Success     200  {object}  handlers.MessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse "Empty or too long"
// @Failure     404  {object}  handlers.ErrorResponse "Conversation not found or expired"
// @Failure     409  {object}  handlers.ErrorResponse "A send is already in flight"
// @Failure     502  {object}  handlers.SendFailedResponse "Chat API failure"
// @Router      /chat/conversations/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailKey(c, http.StatusBadRequest, ErrCodeBadRequest, i18n.KeyBadRequest)
		return
	}

	msgs, err := h.chat.Send(c.Request.Context(), c.Param("id"), owner(c), req.Message)
	switch {
	case err == nil:
		ok(c, http.StatusOK, MessagesResponse{Messages: msgs})
	case len(msgs) > 0:
		_ = c.Error(err)
		p := h.classify(err)
		middleware.LoggerFrom(c).Error().Err(err).Int("status", p.status).Msg("chat send failed")
		c.AbortWithStatusJSON(p.status, SendFailedResponse{
			ErrorResponse: newErrorResponse(c, p.code, i18n.T(c, i18n.KeyChatFailed), nil),
			Messages:      msgs,
		})
	default:
		h.respondError(c, err)
	}
}

// StreamJourney godoc
// @ID          streamJourney
// @Summary     Scripted chat journey
// @Description Server-sent events: one "message" event per journey step at its reveal time, then "done". Once the given conversation has a dynamic message the remaining steps are sent at once.
// @Tags        Chat
// @Produce     text/event-stream
// @Param       conversation  query  string  false  "Conversation ID"
// @Success     200  {string}  string "event stream"
// @Failure     404  {object}  handlers.ErrorResponse "Conversation not found or expired"
// @Router      /chat/journey [get]
func (h *Handlers) StreamJourney(c *gin.Context) {
	ctx := c.Request.Context()
	steps, skip, err := h.chat.RevealPlan(ctx, c.Query("conversation"), owner(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	done := middleware.TrackStream()
	defer done()

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	err = chat.Reveal(ctx, steps, skip, func(st chat.Step) error {
		c.SSEvent("message", st)
		if c.IsAborted() {
			return errStreamClosed
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		middleware.LoggerFrom(c).Debug().Err(err).Msg("journey stream ended early")
		return
	}
	c.SSEvent("done", gin.H{"steps": len(steps)})
	c.Writer.Flush()
}
