package domain

import "time"

// MessageType tags the ChatMessage variant.
type MessageType string

const (
	MessageText        MessageType = "text"
	MessageImage       MessageType = "image"
	MessageAudio       MessageType = "audio"
	MessageModels      MessageType = "models"
	MessageModelDetail MessageType = "model_detail"
)

// Sender identifies which side of the conversation authored a message.
// The mentor is the assistant persona; the mentee is the visitor.
type Sender string

const (
	SenderMentor Sender = "mentor"
	SenderMentee Sender = "mentee"
)

// ChatMessage is one entry of a chat transcript.
//
// Which payload fields are populated depends on Type:
//   - text:         Content
//   - image, audio: Content (media URL) plus optional Caption / Duration
//   - models:       Models, in the order the chat API returned them
//   - model_detail: Model
//
// ID increases monotonically within a single transcript and is used as the
// incremental-refresh cursor. Messages are never persisted.
type ChatMessage struct {
	ID        int64       `json:"id"`
	Sender    Sender      `json:"sender"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Caption   string      `json:"caption,omitempty"`
	Duration  string      `json:"duration,omitempty"`
	Models    []Profile   `json:"models,omitempty"`
	Model     *Profile    `json:"model,omitempty"`
}

// IsMentor reports whether the message was authored by the assistant side.
func (m ChatMessage) IsMentor() bool { return m.Sender == SenderMentor }
