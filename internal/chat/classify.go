package chat

import (
	"time"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// Fixed mentor texts (pt-BR, as shown in the widget).
const (
	// IntroManyText precedes a group of profile cards.
	IntroManyText = "Aqui estão as modelos:"
	// FallbackText is used when a reply carries no usable text.
	FallbackText = "Resposta recebida"
	// ApologyText is appended when a send fails for any reason.
	ApologyText = "Desculpe, ocorreu um erro ao processar sua mensagem. Tente novamente."
)

// Classify turns one decoded reply into the mentor messages to append:
//   - Many   -> intro text, then one "models" message with every profile
//   - Single -> one "model_detail" message
//   - None   -> one text message: answer, else message, else FallbackText
//
// The returned messages carry no ID; the conversation assigns them on
// append. Classify is pure.
func Classify(r Reply, now time.Time) []domain.ChatMessage {
	switch r.Payload.Kind {
	case PayloadMany:
		return []domain.ChatMessage{
			{Sender: domain.SenderMentor, Type: domain.MessageText, Content: IntroManyText, Timestamp: now},
			{Sender: domain.SenderMentor, Type: domain.MessageModels, Models: r.Payload.Many, Timestamp: now},
		}
	case PayloadSingle:
		return []domain.ChatMessage{
			{Sender: domain.SenderMentor, Type: domain.MessageModelDetail, Model: r.Payload.Single, Timestamp: now},
		}
	}

	content := r.Answer
	if content == "" {
		content = r.Message
	}
	if content == "" {
		content = FallbackText
	}
	return []domain.ChatMessage{
		{Sender: domain.SenderMentor, Type: domain.MessageText, Content: content, Timestamp: now},
	}
}

// ClassifyBody parses and classifies a raw reply body in one step.
func ClassifyBody(body []byte, now time.Time) ([]domain.ChatMessage, error) {
	r, err := ParseReply(body)
	if err != nil {
		return nil, err
	}
	return Classify(r, now), nil
}

// Apology builds the fallback message appended after a failed send.
func Apology(now time.Time) domain.ChatMessage {
	return domain.ChatMessage{Sender: domain.SenderMentor, Type: domain.MessageText, Content: ApologyText, Timestamp: now}
}

// UserMessage builds the mentee message for text the visitor typed.
func UserMessage(text string, now time.Time) domain.ChatMessage {
	return domain.ChatMessage{Sender: domain.SenderMentee, Type: domain.MessageText, Content: text, Timestamp: now}
}
