package monitor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/notify"
	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// ErrNotFound is returned by manual polls for an unknown entity ID.
var ErrNotFound = errors.New("entity not found")

// PollOutcome is the full result of polling one entity through the
// probe, tracking, alerting, and notification pipeline.
type PollOutcome struct {
	EntityID      string                    `json:"entity_id"`
	EntityKind    models.EntityKind         `json:"entity_kind"`
	Result        probe.Result              `json:"result"`
	Transition    *Transition               `json:"transition,omitempty"`
	Alert         *models.Alert             `json:"alert,omitempty"`
	Notifications map[string]notify.Outcome `json:"notifications,omitempty"`
}

// PollDevice probes a single device on demand. Manual polls share the
// scheduled pipeline end to end, alerting and notifications included.
func (m *Monitor) PollDevice(ctx context.Context, id string) (*PollOutcome, error) {
	d, err := m.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load device %s: %w", id, err)
	}
	if d == nil {
		return nil, fmt.Errorf("device %s: %w", id, ErrNotFound)
	}
	return m.pollDevice(ctx, d), nil
}

// PollCamera probes a single camera on demand.
func (m *Monitor) PollCamera(ctx context.Context, id string) (*PollOutcome, error) {
	c, err := m.repo.GetCamera(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load camera %s: %w", id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("camera %s: %w", id, ErrNotFound)
	}
	return m.pollCamera(ctx, c), nil
}

func (m *Monitor) pollDevice(ctx context.Context, d *models.Device) *PollOutcome {
	res := m.deviceProber.Probe(ctx, d)
	return m.applyResult(ctx, d, res)
}

func (m *Monitor) pollCamera(ctx context.Context, c *models.Camera) *PollOutcome {
	res := m.cameraProber.Probe(ctx, c)
	return m.applyResult(ctx, c, res)
}

// applyResult runs the post-probe pipeline: persist status, detect the
// transition, persist the alert, then dispatch notifications. The status
// write always precedes alert creation, and the alert row exists before
// any delivery attempt.
func (m *Monitor) applyResult(ctx context.Context, e models.Entity, res probe.Result) *PollOutcome {
	probesTotal.WithLabelValues(string(e.EntityKind()), resultLabel(res)).Inc()

	out := &PollOutcome{
		EntityID:   e.EntityID(),
		EntityKind: e.EntityKind(),
		Result:     res,
	}

	tr, err := m.tracker.Apply(ctx, e, res)
	if err != nil {
		// A failed write leaves this cycle's observation unrecorded; the
		// next cycle retries from the last persisted state.
		m.logger.Warn("failed to persist entity status",
			zap.String("entity_id", e.EntityID()),
			zap.Error(err),
		)
		return out
	}
	if tr == nil {
		return out
	}
	out.Transition = tr

	transitionsTotal.WithLabelValues(string(tr.EntityKind), string(tr.NewStatus)).Inc()
	m.bus.PublishAsync(ctx, event.Event{
		Topic:     event.TopicStatusChanged,
		Source:    "monitor",
		Timestamp: tr.OccurredAt,
		Payload:   tr,
	})

	alert := m.generator.AlertFor(tr)
	if alert == nil {
		return out
	}
	if err := m.repo.InsertAlert(ctx, alert); err != nil {
		m.logger.Error("failed to persist alert",
			zap.String("entity_id", e.EntityID()),
			zap.Error(err),
		)
		return out
	}
	out.Alert = alert
	m.bus.PublishAsync(ctx, event.Event{
		Topic:     event.TopicAlertCreated,
		Source:    "monitor",
		Timestamp: alert.CreatedAt,
		Payload:   alert,
	})

	if m.generator.ShouldNotify(alert) {
		outcomes := m.dispatcher.Dispatch(ctx, notify.AlertContext{
			Alert:      alert,
			EntityName: tr.EntityName,
			EntityAddr: tr.EntityAddr,
		})
		for ch, o := range outcomes {
			notificationsTotal.WithLabelValues(ch, string(o.Status)).Inc()
		}
		out.Notifications = outcomes
	}

	return out
}

func resultLabel(res probe.Result) string {
	if res.Success {
		return "success"
	}
	return "failure"
}
