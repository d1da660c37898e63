package event

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got atomic.Int64
	unsub := bus.Subscribe(TopicAlertCreated, func(_ context.Context, e Event) {
		if e.Topic != TopicAlertCreated {
			t.Errorf("handler topic = %q, want %q", e.Topic, TopicAlertCreated)
		}
		got.Add(1)
	})
	defer unsub()

	bus.Publish(context.Background(), Event{Topic: TopicAlertCreated, Source: "test", Timestamp: time.Now()})
	bus.Publish(context.Background(), Event{Topic: TopicStatusChanged, Source: "test", Timestamp: time.Now()})

	if got.Load() != 1 {
		t.Errorf("handler called %d times, want 1", got.Load())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got atomic.Int64
	unsub := bus.Subscribe(TopicAlertCreated, func(_ context.Context, _ Event) {
		got.Add(1)
	})

	bus.Publish(context.Background(), Event{Topic: TopicAlertCreated})
	unsub()
	bus.Publish(context.Background(), Event{Topic: TopicAlertCreated})

	if got.Load() != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", got.Load())
	}
}

func TestBus_HandlerPanicRecovered(t *testing.T) {
	bus := NewBus(zap.NewNop())

	bus.Subscribe(TopicAlertCreated, func(_ context.Context, _ Event) {
		panic("boom")
	})

	var after atomic.Bool
	bus.Subscribe(TopicAlertCreated, func(_ context.Context, _ Event) {
		after.Store(true)
	})

	// Must not panic the publisher, and later handlers still run.
	bus.Publish(context.Background(), Event{Topic: TopicAlertCreated})

	if !after.Load() {
		t.Error("handler after panicking handler was not called")
	}
}
