package chat

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

//go:embed data/journey.json
var journeyJSON []byte

// Participant is one side of the widget header.
type Participant struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Journey is the static scripted conversation shown before the visitor
// types anything.
type Journey struct {
	Mentor   Participant          `json:"mentor"`
	Mentee   Participant          `json:"mentee"`
	Messages []domain.ChatMessage `json:"messages"`
}

type journeyFile struct {
	Conversation struct {
		Participants struct {
			Mentor Participant `json:"mentor"`
			Mentee Participant `json:"mentee"`
		} `json:"participants"`
		Messages []domain.ChatMessage `json:"messages"`
	} `json:"conversation"`
}

// ParseJourney decodes a journey document.
func ParseJourney(b []byte) (Journey, error) {
	var f journeyFile
	if err := json.Unmarshal(b, &f); err != nil {
		return Journey{}, fmt.Errorf("decode journey: %w", err)
	}
	return Journey{
		Mentor:   f.Conversation.Participants.Mentor,
		Mentee:   f.Conversation.Participants.Mentee,
		Messages: f.Conversation.Messages,
	}, nil
}

// DefaultJourney returns the embedded journey. It panics if the embedded
// document is broken, which is a build defect.
func DefaultJourney() Journey {
	j, err := ParseJourney(journeyJSON)
	if err != nil {
		panic(err)
	}
	return j
}
