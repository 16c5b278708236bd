package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// Conversation is one visitor's transcript of dynamic messages (the static
// journey is not stored here). All methods are safe for concurrent use.
type Conversation struct {
	ID    string
	Owner string // account ID, or "" for anonymous visitors

	mu       sync.Mutex
	messages []domain.ChatMessage
	nextID   int64
	sending  bool
}

// BeginSend claims the single send slot. It returns false when another send
// is still outstanding.
func (c *Conversation) BeginSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending {
		return false
	}
	c.sending = true
	return true
}

// EndSend releases the send slot.
func (c *Conversation) EndSend() {
	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()
}

// Append assigns increasing IDs to msgs, stores them, and returns the stored
// copies.
func (c *Conversation) Append(msgs ...domain.ChatMessage) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		c.nextID++
		m.ID = c.nextID
		c.messages = append(c.messages, m)
		out = append(out, m)
	}
	return out
}

// Since returns the messages whose ID is greater than after, oldest first.
func (c *Conversation) Since(after int64) []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, 0, len(c.messages))
	for _, m := range c.messages {
		if m.ID > after {
			out = append(out, m)
		}
	}
	return out
}

// HasDynamic reports whether any message has been exchanged yet.
func (c *Conversation) HasDynamic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages) > 0
}

// Store keeps conversations in memory and evicts the idle ones. Transcripts
// are never persisted.
type Store struct {
	convs *expirable.LRU[string, *Conversation]
	ttl   time.Duration
}

// NewStore returns a Store evicting conversations idle for at least ttl
// (default 30 minutes when ttl <= 0). The index has no size cap.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		convs: expirable.NewLRU[string, *Conversation](0, nil, ttl),
		ttl:   ttl,
	}
}

// Create opens a new conversation for owner.
func (s *Store) Create(owner string) *Conversation {
	c := &Conversation{ID: uuid.NewString(), Owner: owner}
	s.convs.Add(c.ID, c)
	return c
}

// Get returns the conversation if it exists, is not idle past the TTL, and
// belongs to owner. Conversations opened anonymously are reachable by ID
// alone. A successful lookup restarts the idle clock.
func (s *Store) Get(id, owner string) (*Conversation, bool) {
	c, ok := s.convs.Get(id)
	if !ok {
		return nil, false
	}
	if c.Owner != "" && c.Owner != owner {
		return nil, false
	}
	s.convs.Add(id, c)
	return c, true
}

// Len returns the number of stored conversations, including expired ones
// not yet swept.
func (s *Store) Len() int {
	return s.convs.Len()
}
