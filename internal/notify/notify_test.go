package notify

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

type stubChannel struct {
	name    string
	outcome Outcome
	delay   time.Duration
	calls   int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, _ AlertContext) Outcome {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Outcome{Channel: s.name, Status: OutcomeFailed, Detail: ctx.Err().Error()}
		}
	}
	return s.outcome
}

func testAlert() *models.Alert {
	return &models.Alert{
		ID:         "a1",
		EntityID:   "d1",
		EntityKind: models.KindDevice,
		Severity:   models.SeverityHigh,
		Message:    "Device core-sw1 (10.0.0.2) went offline",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestDispatchCollectsAllOutcomes(t *testing.T) {
	good := &stubChannel{name: "good", outcome: Outcome{Channel: "good", Status: OutcomeSent}}
	bad := &stubChannel{name: "bad", outcome: Outcome{Channel: "bad", Status: OutcomeFailed, Detail: "boom"}}
	idle := &stubChannel{name: "idle", outcome: Outcome{Channel: "idle", Status: OutcomeSkipped}}

	d := NewDispatcher([]Channel{good, bad, idle}, time.Second, zap.NewNop())
	outcomes := d.Dispatch(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1", EntityAddr: "10.0.0.2"})

	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	if outcomes["good"].Status != OutcomeSent {
		t.Errorf("good channel status = %s, want sent", outcomes["good"].Status)
	}
	if outcomes["bad"].Status != OutcomeFailed {
		t.Errorf("bad channel status = %s, want failed", outcomes["bad"].Status)
	}
	if outcomes["idle"].Status != OutcomeSkipped {
		t.Errorf("idle channel status = %s, want skipped", outcomes["idle"].Status)
	}
}

func TestDispatchFailureDoesNotBlockOthers(t *testing.T) {
	slow := &stubChannel{name: "slow", delay: 5 * time.Second}
	fast := &stubChannel{name: "fast", outcome: Outcome{Channel: "fast", Status: OutcomeSent}}

	d := NewDispatcher([]Channel{slow, fast}, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	outcomes := d.Dispatch(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1"})
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("dispatch took %v, want bounded by per-channel timeout", elapsed)
	}
	if outcomes["fast"].Status != OutcomeSent {
		t.Errorf("fast channel status = %s, want sent", outcomes["fast"].Status)
	}
	if outcomes["slow"].Status != OutcomeFailed {
		t.Errorf("slow channel status = %s, want failed", outcomes["slow"].Status)
	}
}

func TestDispatchSingleAttemptPerChannel(t *testing.T) {
	ch := &stubChannel{name: "once", outcome: Outcome{Channel: "once", Status: OutcomeFailed, Detail: "refused"}}
	d := NewDispatcher([]Channel{ch}, time.Second, zap.NewNop())

	d.Dispatch(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1"})
	if ch.calls != 1 {
		t.Fatalf("channel called %d times, want 1", ch.calls)
	}
}

func TestEmailChannelSkippedWhenUnconfigured(t *testing.T) {
	ch := NewEmailChannel(EmailConfig{})
	out := ch.Send(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1"})
	if out.Status != OutcomeSkipped {
		t.Fatalf("status = %s, want skipped", out.Status)
	}
}
