package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

func TestDefaultJourney(t *testing.T) {
	j := DefaultJourney()
	assert.NotEmpty(t, j.Mentor.Name)
	require.NotEmpty(t, j.Messages)
	for i, m := range j.Messages {
		assert.Equal(t, int64(i+1), m.ID)
		assert.False(t, m.Timestamp.IsZero())
	}
}

func TestParseJourney_Invalid(t *testing.T) {
	_, err := ParseJourney([]byte("{"))
	require.Error(t, err)
}

func TestSchedule_DelaysBySender(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Sender: domain.SenderMentor},
		{Sender: domain.SenderMentee},
		{Sender: domain.SenderMentor},
	}
	steps := Schedule(msgs, DefaultDelays, false)
	require.Len(t, steps, 3)

	assert.Equal(t, 1500*time.Millisecond, steps[0].Delay)
	assert.Equal(t, 800*time.Millisecond, steps[1].Delay)
	assert.Equal(t, 1500*time.Millisecond, steps[2].Delay)
	assert.Equal(t, 3800*time.Millisecond, steps[2].At)
}

func TestSchedule_ImmediateOnceDynamic(t *testing.T) {
	steps := Schedule(DefaultJourney().Messages, DefaultDelays, true)
	for _, st := range steps {
		assert.Zero(t, st.Delay)
		assert.Zero(t, st.At)
	}
}

func fakeAfter(t *testing.T) *[]time.Duration {
	t.Helper()
	var waited []time.Duration
	orig := after
	after = func(d time.Duration) <-chan time.Time {
		waited = append(waited, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	t.Cleanup(func() { after = orig })
	return &waited
}

func TestReveal_WaitsThenSkips(t *testing.T) {
	waited := fakeAfter(t)
	msgs := []domain.ChatMessage{
		{ID: 1, Sender: domain.SenderMentor},
		{ID: 2, Sender: domain.SenderMentee},
		{ID: 3, Sender: domain.SenderMentor},
	}
	steps := Schedule(msgs, DefaultDelays, false)

	var emitted []int64
	skip := func() bool { return len(emitted) >= 1 }
	err := Reveal(context.Background(), steps, skip, func(st Step) error {
		emitted = append(emitted, st.Message.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, emitted)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, *waited)
}

func TestReveal_SkipInterruptsWait(t *testing.T) {
	origAfter, origPoll := after, skipPoll
	t.Cleanup(func() { after, skipPoll = origAfter, origPoll })
	after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }
	skipPoll = 5 * time.Millisecond

	msgs := []domain.ChatMessage{
		{ID: 1, Sender: domain.SenderMentor},
		{ID: 2, Sender: domain.SenderMentee},
		{ID: 3, Sender: domain.SenderMentor},
	}
	steps := Schedule(msgs, DefaultDelays, false)

	var arrived atomic.Bool
	time.AfterFunc(20*time.Millisecond, func() { arrived.Store(true) })

	var emitted []int64
	done := make(chan error, 1)
	go func() {
		done <- Reveal(context.Background(), steps, arrived.Load, func(st Step) error {
			emitted = append(emitted, st.Message.ID)
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("a dynamic message during a delay did not cut the wait short")
	}
	assert.Equal(t, []int64{1, 2, 3}, emitted)
}

func TestReveal_CancelDuringWait(t *testing.T) {
	origAfter := after
	t.Cleanup(func() { after = origAfter })
	after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	steps := Schedule([]domain.ChatMessage{{Sender: domain.SenderMentor}}, DefaultDelays, false)

	err := Reveal(ctx, steps, func() bool { return false }, func(Step) error {
		t.Fatal("emit after cancel")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReveal_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	steps := Schedule([]domain.ChatMessage{{Sender: domain.SenderMentor}}, DefaultDelays, false)

	err := Reveal(ctx, steps, nil, func(Step) error {
		t.Fatal("emit after cancel")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReveal_EmitError(t *testing.T) {
	boom := errors.New("client gone")
	steps := Schedule([]domain.ChatMessage{{}, {}}, DefaultDelays, true)
	calls := 0
	err := Reveal(context.Background(), steps, nil, func(Step) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
