// Package chat implements the chat widget's server side: decoding chat API
// replies into an explicit payload variant, classifying them into transcript
// messages, holding per-conversation transcripts, and scheduling the reveal
// of the static journey.
package chat

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// PayloadKind tags the shape of the profiles embedded in a chat reply.
type PayloadKind int

const (
	// PayloadNone: rawData absent, empty, or not profile-shaped.
	PayloadNone PayloadKind = iota
	// PayloadSingle: exactly one profile (bare object or one-element array).
	PayloadSingle
	// PayloadMany: more than one profile.
	PayloadMany
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadSingle:
		return "single"
	case PayloadMany:
		return "many"
	default:
		return "none"
	}
}

// Payload is the RawChatPayload variant: None, Single(profile) or
// Many(profiles). Exactly one of Single / Many is set for the non-None kinds.
type Payload struct {
	Kind   PayloadKind
	Single *domain.Profile
	Many   []domain.Profile
}

// Reply is a decoded POST /chat response.
type Reply struct {
	Answer  string
	Message string
	Payload Payload
}

// ErrInvalidReply is returned when a reply body is not JSON at all.
var ErrInvalidReply = errors.New("chat reply is not valid JSON")

type replyWire struct {
	Answer            json.RawMessage `json:"answer"`
	Message           json.RawMessage `json:"message"`
	FormattedResponse json.RawMessage `json:"formattedResponse"`
}

// ParseReply decodes a chat reply body. Anything that is valid JSON parses:
// fields of the wrong shape are treated as absent so the conversation always
// gets a message. Only a body that is not JSON fails.
func ParseReply(body []byte) (Reply, error) {
	if !json.Valid(body) {
		return Reply{}, ErrInvalidReply
	}
	var w replyWire
	if err := json.Unmarshal(body, &w); err != nil {
		// Valid JSON but not an object (array, string, number).
		return Reply{}, nil
	}
	return Reply{
		Answer:  jsonString(w.Answer),
		Message: jsonString(w.Message),
		Payload: decodePayload(rawDataOf(w.FormattedResponse)),
	}, nil
}

// rawDataOf digs formattedResponse.data.rawData out of the reply.
func rawDataOf(formatted json.RawMessage) json.RawMessage {
	var fr struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(formatted, &fr) != nil {
		return nil
	}
	var d struct {
		RawData json.RawMessage `json:"rawData"`
	}
	if json.Unmarshal(fr.Data, &d) != nil {
		return nil
	}
	return d.RawData
}

// decodePayload applies the shape rules, first match wins:
//  1. array with more than one element -> Many (every element, in order)
//  2. object with an id, or one-element array whose element has an id -> Single
//  3. anything else -> None
func decodePayload(raw json.RawMessage) Payload {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Payload{Kind: PayloadNone}
	}

	if trimmed[0] == '[' {
		var elems []json.RawMessage
		if json.Unmarshal(raw, &elems) != nil {
			return Payload{Kind: PayloadNone}
		}
		switch {
		case len(elems) > 1:
			many := make([]domain.Profile, 0, len(elems))
			for _, e := range elems {
				many = append(many, lenientProfile(e))
			}
			return Payload{Kind: PayloadMany, Many: many}
		case len(elems) == 1 && hasID(elems[0]):
			p := lenientProfile(elems[0])
			return Payload{Kind: PayloadSingle, Single: &p}
		default:
			return Payload{Kind: PayloadNone}
		}
	}

	if trimmed[0] == '{' && hasID(raw) {
		p := lenientProfile(raw)
		return Payload{Kind: PayloadSingle, Single: &p}
	}
	return Payload{Kind: PayloadNone}
}

// hasID reports whether raw is an object whose id is present and non-empty.
func hasID(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return false
	}
	id, ok := obj["id"]
	if !ok {
		return false
	}
	switch strings.TrimSpace(string(id)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// lenientProfile decodes whatever matches the profile shape and ignores the
// rest. Chat cards render best-effort; unknown categories are kept as-is.
func lenientProfile(raw json.RawMessage) domain.Profile {
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return domain.Profile{Videos: []string{}}
		}
	}
	if p.ID == "" {
		// Numeric ids are common in demo payloads.
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil {
			if s := strings.TrimSpace(string(obj["id"])); s != "" && s != "null" {
				p.ID = strings.Trim(s, `"`)
			}
		}
	}
	if p.Videos == nil {
		p.Videos = []string{}
	}
	return p
}

func jsonString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
