package monitor

import (
	"testing"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

func TestGeneratorAlertTable(t *testing.T) {
	tests := []struct {
		name         string
		kind         models.EntityKind
		old, current models.Status
		wantSeverity models.Severity
		wantMessage  string
	}{
		{
			"device goes offline", models.KindDevice,
			models.StatusOnline, models.StatusOffline,
			models.SeverityHigh, "Device edge-1 (192.0.2.10) went offline",
		},
		{
			"device recovers", models.KindDevice,
			models.StatusOffline, models.StatusOnline,
			models.SeverityInfo, "Device edge-1 (192.0.2.10) is back online",
		},
		{
			"camera goes offline", models.KindCamera,
			models.StatusOnline, models.StatusOffline,
			models.SeverityMedium, "Camera edge-1 (192.0.2.10) went offline",
		},
		{
			"camera recovers", models.KindCamera,
			models.StatusOffline, models.StatusOnline,
			models.SeverityInfo, "Camera edge-1 (192.0.2.10) is back online",
		},
	}

	g := NewGenerator(models.SeverityHigh)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := g.AlertFor(&Transition{
				EntityID:   "e1",
				EntityKind: tt.kind,
				EntityName: "edge-1",
				EntityAddr: "192.0.2.10",
				OldStatus:  tt.old,
				NewStatus:  tt.current,
			})
			if a == nil {
				t.Fatal("expected an alert")
			}
			if a.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", a.Severity, tt.wantSeverity)
			}
			if a.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", a.Message, tt.wantMessage)
			}
			if a.ID == "" {
				t.Error("alert ID not assigned")
			}
		})
	}
}

func TestGeneratorSkipsInitialObservation(t *testing.T) {
	g := NewGenerator(models.SeverityHigh)
	a := g.AlertFor(&Transition{
		EntityKind: models.KindDevice,
		OldStatus:  models.StatusUnknown,
		NewStatus:  models.StatusOffline,
	})
	if a != nil {
		t.Fatalf("alert = %+v, want nil for unknown old status", a)
	}
	if g.AlertFor(nil) != nil {
		t.Fatal("nil transition must yield nil alert")
	}
}

func TestGeneratorThreshold(t *testing.T) {
	g := NewGenerator(models.SeverityHigh)
	high := &models.Alert{Severity: models.SeverityHigh}
	medium := &models.Alert{Severity: models.SeverityMedium}

	if !g.ShouldNotify(high) {
		t.Error("high severity should clear a high threshold")
	}
	if g.ShouldNotify(medium) {
		t.Error("medium severity should not clear a high threshold")
	}
	if g.ShouldNotify(nil) {
		t.Error("nil alert should never notify")
	}
}

func TestGeneratorInvalidThresholdFallsBack(t *testing.T) {
	g := NewGenerator(models.Severity("bogus"))
	if !g.ShouldNotify(&models.Alert{Severity: models.SeverityHigh}) {
		t.Error("fallback threshold should be high")
	}
	if g.ShouldNotify(&models.Alert{Severity: models.SeverityMedium}) {
		t.Error("medium should not clear the fallback threshold")
	}
}
