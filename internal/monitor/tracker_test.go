package monitor

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

func TestTrackerLastSeenOnlyOnSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.devices["d1"] = &models.Device{ID: "d1", Name: "sw", Address: "10.0.0.2", Status: models.StatusOnline}
	tr := NewTracker(repo, zap.NewNop())

	_, err := tr.Apply(context.Background(), repo.devices["d1"], probe.Result{Success: false, CheckedAt: time.Now()})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := repo.statusWrites[0].lastSeen; got != nil {
		t.Errorf("failed probe wrote last_seen = %v, want nil", got)
	}

	checked := time.Now().UTC()
	_, err = tr.Apply(context.Background(), repo.devices["d1"], probe.Result{Success: true, CheckedAt: checked})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := repo.statusWrites[1].lastSeen; got == nil || !got.Equal(checked) {
		t.Errorf("successful probe wrote last_seen = %v, want %v", got, checked)
	}
}

func TestTrackerTagsStructuredProbeSupport(t *testing.T) {
	repo := newFakeRepo()
	repo.devices["d1"] = &models.Device{ID: "d1", Name: "sw", Address: "10.0.0.2", Status: models.StatusUnknown}
	tr := NewTracker(repo, zap.NewNop())

	res := probe.Result{
		Success:     true,
		Structured:  true,
		Diagnostics: models.Metadata{"sysName": "sw.example.net"},
		CheckedAt:   time.Now(),
	}
	if _, err := tr.Apply(context.Background(), repo.devices["d1"], res); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	merge := repo.statusWrites[0].merge
	if merge["snmp_available"] != "true" {
		t.Errorf("snmp_available = %q, want true", merge["snmp_available"])
	}
	if merge["sysName"] != "sw.example.net" {
		t.Errorf("sysName = %q, want sw.example.net", merge["sysName"])
	}
}

func TestTrackerNoFlagForCameras(t *testing.T) {
	repo := newFakeRepo()
	repo.cameras["c1"] = &models.Camera{ID: "c1", Name: "lobby", Address: "10.0.0.9", Status: models.StatusUnknown}
	tr := NewTracker(repo, zap.NewNop())

	if _, err := tr.Apply(context.Background(), repo.cameras["c1"], probe.Result{Success: true, CheckedAt: time.Now()}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := repo.statusWrites[0].merge["snmp_available"]; ok {
		t.Error("camera metadata should not carry snmp_available")
	}
}
