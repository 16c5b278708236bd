package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/brasil-beauty-backend/internal/chat"
	"github.com/tbourn/brasil-beauty-backend/internal/domain"
	"github.com/tbourn/brasil-beauty-backend/internal/remote"
)

// ----- Fake chat API -----

type fakeChatAPI struct {
	body []byte
	err  error

	mu      sync.Mutex
	prompts []string

	// when set, PostChat blocks until release is closed
	entered chan struct{}
	release chan struct{}
}

func (f *fakeChatAPI) PostChat(ctx context.Context, msg string) ([]byte, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, msg)
	f.mu.Unlock()
	if f.release != nil {
		close(f.entered)
		<-f.release
	}
	return f.body, f.err
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newChatSvc(api ChatAPI) *ChatService {
	s := NewChatService(api, chat.NewStore(time.Hour))
	s.Now = func() time.Time { return fixedNow }
	return s
}

// ----- Tests -----

func TestSend_AppendsUserThenClassifiedReply(t *testing.T) {
	api := &fakeChatAPI{body: []byte(`{"answer":"Oi!"}`)}
	s := newChatSvc(api)
	id := s.Start(context.Background(), "")

	got, err := s.Send(context.Background(), id, "", "  olá  ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 messages, got %d", len(got))
	}
	if got[0].Sender != domain.SenderMentee || got[0].Content != "olá" || got[0].ID != 1 {
		t.Fatalf("user message: %+v", got[0])
	}
	if got[1].Sender != domain.SenderMentor || got[1].Content != "Oi!" || got[1].ID != 2 {
		t.Fatalf("reply: %+v", got[1])
	}
	if api.prompts[0] != "olá" {
		t.Fatalf("prompt forwarded untrimmed: %q", api.prompts[0])
	}
}

func TestSend_ManyProfilesAddsIntro(t *testing.T) {
	api := &fakeChatAPI{body: []byte(`{"formattedResponse":{"data":{"rawData":[{"id":"a"},{"id":"b"}]}}}`)}
	s := newChatSvc(api)
	id := s.Start(context.Background(), "")

	got, err := s.Send(context.Background(), id, "", "modelos em SP")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 3 || got[1].Content != chat.IntroManyText || got[2].Type != domain.MessageModels {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestSend_FailureAppendsApology(t *testing.T) {
	boom := &remote.TransportError{Op: remote.OpChat, Status: 502}
	s := newChatSvc(&fakeChatAPI{err: boom})
	id := s.Start(context.Background(), "")

	got, err := s.Send(context.Background(), id, "", "oi")
	if !errors.Is(err, boom) {
		t.Fatalf("want transport error, got %v", err)
	}
	if len(got) != 2 || got[1].Content != chat.ApologyText {
		t.Fatalf("want user message + apology, got %+v", got)
	}

	all, _ := s.Messages(context.Background(), id, "", 0)
	if len(all) != 2 {
		t.Fatalf("transcript should hold both messages, got %d", len(all))
	}
}

func TestSend_InvalidReplyIsMalformed(t *testing.T) {
	s := newChatSvc(&fakeChatAPI{body: []byte("not json")})
	id := s.Start(context.Background(), "")

	_, err := s.Send(context.Background(), id, "", "oi")
	var mre *remote.MalformedResponseError
	if !errors.As(err, &mre) {
		t.Fatalf("want MalformedResponseError, got %v", err)
	}
	if !errors.Is(err, chat.ErrInvalidReply) {
		t.Fatalf("cause should be ErrInvalidReply")
	}
}

func TestSend_InputGuards(t *testing.T) {
	s := newChatSvc(&fakeChatAPI{body: []byte(`{}`)})
	s.MaxPromptRunes = 5
	id := s.Start(context.Background(), "")

	if _, err := s.Send(context.Background(), id, "", " \n\t "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("want ErrEmptyPrompt, got %v", err)
	}
	if _, err := s.Send(context.Background(), id, "", "çççççç"); !errors.Is(err, ErrTooLong) {
		t.Fatalf("want ErrTooLong, got %v", err)
	}
	if _, err := s.Send(context.Background(), id, "", "ççççç"); err != nil {
		t.Fatalf("5 runes must pass: %v", err)
	}
	if _, err := s.Send(context.Background(), "nope", "", "oi"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("want ErrConversationNotFound, got %v", err)
	}
}

func TestSend_SecondSendWhileInFlight(t *testing.T) {
	api := &fakeChatAPI{
		body:    []byte(`{"answer":"ok"}`),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newChatSvc(api)
	id := s.Start(context.Background(), "")

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), id, "", "primeira")
		done <- err
	}()
	<-api.entered

	if _, err := s.Send(context.Background(), id, "", "segunda"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("want ErrSendInFlight, got %v", err)
	}
	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	msgs, _ := s.Messages(context.Background(), id, "", 0)
	if len(msgs) != 2 {
		t.Fatalf("rejected send must not touch the transcript, got %d messages", len(msgs))
	}
}

func TestMessages_SinceAndOwnership(t *testing.T) {
	s := newChatSvc(&fakeChatAPI{body: []byte(`{"answer":"ok"}`)})
	id := s.Start(context.Background(), "acc-1")

	if _, err := s.Send(context.Background(), id, "acc-1", "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs, err := s.Messages(context.Background(), id, "acc-1", 1)
	if err != nil || len(msgs) != 1 || msgs[0].ID != 2 {
		t.Fatalf("since=1: %+v, %v", msgs, err)
	}
	if _, err := s.Messages(context.Background(), id, "acc-2", 0); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("other owner must not see the conversation: %v", err)
	}
}

func TestRevealPlan(t *testing.T) {
	s := newChatSvc(&fakeChatAPI{body: []byte(`{"answer":"ok"}`)})

	steps, skip, err := s.RevealPlan(context.Background(), "", "")
	if err != nil || skip != nil {
		t.Fatalf("anonymous plan: %v", err)
	}
	if len(steps) != len(s.Journey.Messages) || steps[0].Delay == 0 {
		t.Fatalf("expected delayed steps, got %+v", steps[0])
	}

	id := s.Start(context.Background(), "")
	if _, err := s.Send(context.Background(), id, "", "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	steps, skip, err = s.RevealPlan(context.Background(), id, "")
	if err != nil || skip == nil || !skip() {
		t.Fatalf("plan after send: %v", err)
	}
	for _, st := range steps {
		if st.Delay != 0 {
			t.Fatalf("journey must be immediate once dynamic messages exist")
		}
	}

	if _, _, err := s.RevealPlan(context.Background(), "missing", ""); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("want ErrConversationNotFound, got %v", err)
	}
}

func TestNewChatService_Defaults(t *testing.T) {
	s := NewChatService(&fakeChatAPI{}, chat.NewStore(0))
	if s.Delays != chat.DefaultDelays || s.MaxPromptRunes <= 0 || s.Now == nil {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if !strings.Contains(s.Journey.Mentor.Name, "Brasil Beauty") {
		t.Fatalf("journey not loaded: %+v", s.Journey.Mentor)
	}
}
