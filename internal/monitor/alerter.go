package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// Generator turns status transitions into alerts. A transition out of
// the unknown state is an initial observation, not an incident, and
// yields no alert.
type Generator struct {
	minSeverity models.Severity
}

func NewGenerator(minSeverity models.Severity) *Generator {
	if !minSeverity.Valid() {
		minSeverity = models.SeverityHigh
	}
	return &Generator{minSeverity: minSeverity}
}

// AlertFor builds the alert for a transition, or nil when the transition
// does not warrant one.
func (g *Generator) AlertFor(tr *Transition) *models.Alert {
	if tr == nil || tr.OldStatus == models.StatusUnknown {
		return nil
	}

	var severity models.Severity
	var message string

	switch {
	case tr.NewStatus == models.StatusOffline && tr.EntityKind == models.KindDevice:
		severity = models.SeverityHigh
		message = fmt.Sprintf("Device %s (%s) went offline", tr.EntityName, tr.EntityAddr)
	case tr.NewStatus == models.StatusOffline && tr.EntityKind == models.KindCamera:
		severity = models.SeverityMedium
		message = fmt.Sprintf("Camera %s (%s) went offline", tr.EntityName, tr.EntityAddr)
	case tr.NewStatus == models.StatusOnline && tr.EntityKind == models.KindDevice:
		severity = models.SeverityInfo
		message = fmt.Sprintf("Device %s (%s) is back online", tr.EntityName, tr.EntityAddr)
	case tr.NewStatus == models.StatusOnline && tr.EntityKind == models.KindCamera:
		severity = models.SeverityInfo
		message = fmt.Sprintf("Camera %s (%s) is back online", tr.EntityName, tr.EntityAddr)
	default:
		return nil
	}

	occurred := tr.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	return &models.Alert{
		ID:         uuid.NewString(),
		EntityID:   tr.EntityID,
		EntityKind: tr.EntityKind,
		Severity:   severity,
		Message:    message,
		CreatedAt:  occurred,
	}
}

// ShouldNotify reports whether the alert clears the delivery threshold.
// Alerts below it are persisted for the record but not dispatched.
func (g *Generator) ShouldNotify(a *models.Alert) bool {
	return a != nil && a.Severity.AtLeast(g.minSeverity)
}
