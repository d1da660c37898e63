// Package notify delivers alerts through configured channels (email,
// chat webhook). Channels fail independently: a dispatch always completes
// and returns one outcome per channel, never an error.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// OutcomeStatus classifies a delivery attempt on one channel.
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeSkipped OutcomeStatus = "skipped" // channel not configured
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the result of one delivery attempt on one channel.
// Outcomes are ephemeral; they are logged and returned, never persisted.
type Outcome struct {
	Channel string        `json:"channel"`
	Status  OutcomeStatus `json:"status"`
	Detail  string        `json:"detail,omitempty"` // recipient, reason, or error
}

// AlertContext is the read-only snapshot a channel formats messages from.
// EntityName is "System" for alerts with no entity reference.
type AlertContext struct {
	Alert      *models.Alert
	EntityName string
	EntityAddr string
}

// Channel delivers one alert through one mechanism. Implementations
// report failures through the Outcome, never by panicking or blocking
// past the context deadline.
type Channel interface {
	Name() string
	Send(ctx context.Context, ac AlertContext) Outcome
}

// Dispatcher fans an alert out to all channels concurrently.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the given channels. Each
// channel attempt is bounded by timeout.
func NewDispatcher(channels []Channel, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{channels: channels, timeout: timeout, logger: logger}
}

// Dispatch attempts delivery on every channel and returns the outcome of
// each, keyed by channel name. Channels run concurrently; one channel's
// failure never blocks or fails the others. A single attempt is made per
// channel; retries belong to a higher layer.
func (d *Dispatcher) Dispatch(ctx context.Context, ac AlertContext) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(d.channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			outcome := ch.Send(sendCtx, ac)
			cancel()

			mu.Lock()
			outcomes[ch.Name()] = outcome
			mu.Unlock()

			switch outcome.Status {
			case OutcomeFailed:
				d.logger.Warn("notification delivery failed",
					zap.String("channel", ch.Name()),
					zap.String("alert_id", ac.Alert.ID),
					zap.String("detail", outcome.Detail),
				)
			case OutcomeSkipped:
				d.logger.Debug("notification channel skipped",
					zap.String("channel", ch.Name()),
					zap.String("detail", outcome.Detail),
				)
			default:
				d.logger.Info("notification delivered",
					zap.String("channel", ch.Name()),
					zap.String("alert_id", ac.Alert.ID),
				)
			}
		}(ch)
	}

	wg.Wait()
	return outcomes
}
