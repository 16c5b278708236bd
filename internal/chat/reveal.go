package chat

import (
	"context"
	"time"

	"github.com/tbourn/brasil-beauty-backend/internal/domain"
)

// Delays are the per-sender pauses before a journey message appears. Mentor
// messages "type" for longer than the visitor's.
type Delays struct {
	Mentor time.Duration
	Mentee time.Duration
}

// DefaultDelays matches the widget's animation.
var DefaultDelays = Delays{Mentor: 1500 * time.Millisecond, Mentee: 800 * time.Millisecond}

func (d Delays) forSender(s domain.Sender) time.Duration {
	if s == domain.SenderMentor {
		return d.Mentor
	}
	return d.Mentee
}

// Step is one scheduled reveal: wait Delay after the previous step, then
// show Message. At is the cumulative offset from the start.
type Step struct {
	Index   int                `json:"index"`
	Delay   time.Duration      `json:"-"`
	At      time.Duration      `json:"-"`
	Message domain.ChatMessage `json:"message"`
}

// Schedule computes the reveal plan for msgs. Once the conversation has a
// dynamic message every step is immediate.
func Schedule(msgs []domain.ChatMessage, d Delays, hasDynamic bool) []Step {
	steps := make([]Step, len(msgs))
	var at time.Duration
	for i, m := range msgs {
		var delay time.Duration
		if !hasDynamic {
			delay = d.forSender(m.Sender)
		}
		at += delay
		steps[i] = Step{Index: i, Delay: delay, At: at, Message: m}
	}
	return steps
}

// after is the timer seam used by Reveal.
var after = time.After

// skipPoll is how often Reveal re-checks skip during a delay.
var skipPoll = 100 * time.Millisecond

// Reveal plays steps in order, waiting each step's Delay before calling
// emit. If skip reports true before or during a wait (a dynamic message
// arrived), the remaining steps are emitted immediately. skip is polled
// every skipPoll while waiting. It stops on ctx cancellation or the first
// emit error.
func Reveal(ctx context.Context, steps []Step, skip func() bool, emit func(Step) error) error {
	skipping := false
	for _, st := range steps {
		if !skipping && skip != nil && skip() {
			skipping = true
		}
		if !skipping && st.Delay > 0 {
			skipped, err := wait(ctx, st.Delay, skip)
			if err != nil {
				return err
			}
			skipping = skipped
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(st); err != nil {
			return err
		}
	}
	return nil
}

// wait blocks for d, returning early with skipped=true once skip reports
// true.
func wait(ctx context.Context, d time.Duration, skip func() bool) (skipped bool, err error) {
	timer := after(d)
	var poll <-chan time.Time
	if skip != nil {
		tk := time.NewTicker(skipPoll)
		defer tk.Stop()
		poll = tk.C
	}
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer:
			return false, nil
		case <-poll:
			if skip() {
				return true, nil
			}
		}
	}
}
