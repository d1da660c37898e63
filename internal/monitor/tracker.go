package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// StatusRepo is the persistence surface the tracker writes through.
type StatusRepo interface {
	UpdateDeviceStatus(ctx context.Context, id string, status models.Status, lastSeen *time.Time, merge models.Metadata) error
	UpdateCameraStatus(ctx context.Context, id string, status models.Status, lastSeen *time.Time, merge models.Metadata) error
}

// Transition records a status change observed for one entity.
type Transition struct {
	EntityID   string
	EntityKind models.EntityKind
	EntityName string
	EntityAddr string
	OldStatus  models.Status
	NewStatus  models.Status
	OccurredAt time.Time
}

// Tracker applies probe results to entity state: it derives the new
// status, persists it together with last-seen and merged metadata, and
// reports the transition when the status changed.
type Tracker struct {
	repo   StatusRepo
	logger *zap.Logger
}

func NewTracker(repo StatusRepo, logger *zap.Logger) *Tracker {
	return &Tracker{repo: repo, logger: logger}
}

// Apply persists the outcome of one probe and returns the transition, or
// nil when the status did not change. last_seen advances only on a
// successful probe; a failed probe never touches it.
func (t *Tracker) Apply(ctx context.Context, e models.Entity, res probe.Result) (*Transition, error) {
	oldStatus := e.CurrentStatus()
	newStatus := models.StatusOffline
	if res.Success {
		newStatus = models.StatusOnline
	}

	var lastSeen *time.Time
	if res.Success {
		ts := res.CheckedAt
		lastSeen = &ts
	}

	merge := models.Metadata{}
	for k, v := range res.Diagnostics {
		merge[k] = v
	}
	if e.EntityKind() == models.KindDevice {
		merge["snmp_available"] = fmt.Sprintf("%t", res.Structured)
	}

	var err error
	switch e.EntityKind() {
	case models.KindDevice:
		err = t.repo.UpdateDeviceStatus(ctx, e.EntityID(), newStatus, lastSeen, merge)
	case models.KindCamera:
		err = t.repo.UpdateCameraStatus(ctx, e.EntityID(), newStatus, lastSeen, merge)
	default:
		err = fmt.Errorf("unknown entity kind %q", e.EntityKind())
	}
	if err != nil {
		return nil, fmt.Errorf("persist status for %s: %w", e.EntityID(), err)
	}

	if oldStatus == newStatus {
		return nil, nil
	}

	t.logger.Info("entity status changed",
		zap.String("entity_id", e.EntityID()),
		zap.String("kind", string(e.EntityKind())),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
	)

	return &Transition{
		EntityID:   e.EntityID(),
		EntityKind: e.EntityKind(),
		EntityName: e.DisplayName(),
		EntityAddr: e.NetworkAddress(),
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		OccurredAt: res.CheckedAt,
	}, nil
}
