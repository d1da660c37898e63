package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/monitor"
	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/internal/repo"
	"github.com/sitewatch-io/sitewatch/internal/store"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

type fakePoller struct {
	mu      sync.Mutex
	outcome *monitor.PollOutcome
	err     error
	cycles  int
}

func (f *fakePoller) PollDevice(context.Context, string) (*monitor.PollOutcome, error) {
	return f.outcome, f.err
}

func (f *fakePoller) PollCamera(context.Context, string) (*monitor.PollOutcome, error) {
	return f.outcome, f.err
}

func (f *fakePoller) TriggerAll() {
	f.mu.Lock()
	f.cycles += 2
	f.mu.Unlock()
}

func (f *fakePoller) cycleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycles
}

func newTestServer(t *testing.T, poller Poller) (*Server, *repo.Repo) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r, err := repo.New(context.Background(), st)
	if err != nil {
		t.Fatalf("create repo: %v", err)
	}

	if poller == nil {
		poller = &fakePoller{}
	}
	bus := event.NewBus(zap.NewNop())
	return New("127.0.0.1:0", r, poller, bus, nil, zap.NewNop()), r
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestDeviceCRUD(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/v1/devices", DeviceRequest{
		Name:          "core-sw1",
		Address:       "10.0.0.2",
		SNMPCommunity: "public",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.Device
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created device: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created device has no ID")
	}
	if created.Status != models.StatusUnknown {
		t.Errorf("new device status = %s, want unknown", created.Status)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/devices/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list []*models.Device
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}

	w = doRequest(t, s, http.MethodDelete, "/api/v1/devices/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/devices/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q, want application/problem+json", ct)
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodPost, "/api/v1/devices", DeviceRequest{Name: "no-address"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPollDeviceEndpoint(t *testing.T) {
	poller := &fakePoller{outcome: &monitor.PollOutcome{
		EntityID:   "d1",
		EntityKind: models.KindDevice,
		Result:     probe.Result{Success: true, CheckedAt: time.Now().UTC()},
	}}
	s, _ := newTestServer(t, poller)

	w := doRequest(t, s, http.MethodPost, "/api/v1/devices/d1/poll", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out monitor.PollOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !out.Result.Success {
		t.Error("expected successful result in response")
	}
}

func TestPollDeviceNotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakePoller{err: monitor.ErrNotFound})
	w := doRequest(t, s, http.MethodPost, "/api/v1/devices/missing/poll", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAlertAckFlow(t *testing.T) {
	s, r := newTestServer(t, nil)
	ctx := context.Background()

	alert := &models.Alert{
		ID:         "a1",
		EntityID:   "d1",
		EntityKind: models.KindDevice,
		Severity:   models.SeverityHigh,
		Message:    "Device core-sw1 (10.0.0.2) went offline",
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("insert alert: %v", err)
	}

	w := doRequest(t, s, http.MethodGet, "/api/v1/alerts?unacked=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var alerts []*models.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("unacked alerts = %d, want 1", len(alerts))
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/alerts/a1/ack", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ack status = %d", w.Code)
	}

	// Second ack is a no-op, not an error.
	w = doRequest(t, s, http.MethodPost, "/api/v1/alerts/a1/ack", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second ack status = %d, want 200", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/alerts?unacked=true", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("unacked alerts after ack = %d, want 0", len(alerts))
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/alerts/missing/ack", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("ack missing status = %d, want 404", w.Code)
	}
}

func TestPollAllStartsCycles(t *testing.T) {
	poller := &fakePoller{}
	s, _ := newTestServer(t, poller)

	w := doRequest(t, s, http.MethodPost, "/api/v1/poll", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	if got := poller.cycleCount(); got != 2 {
		t.Fatalf("cycles started = %d, want 2", got)
	}
}

func TestCreateAlert(t *testing.T) {
	s, r := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/v1/alerts", AlertRequest{
		Severity: models.SeverityLow,
		Message:  "maintenance window starting",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode alert: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created alert has no ID")
	}

	stored, err := r.GetAlert(context.Background(), created.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored alert = %v, err %v", stored, err)
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/alerts", AlertRequest{Severity: "urgent", Message: "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid severity status = %d, want 400", w.Code)
	}
}

func TestListAlertsRejectsBadLimit(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := doRequest(t, s, http.MethodGet, "/api/v1/alerts?limit=zero", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStatusSummaryEndpoint(t *testing.T) {
	s, r := newTestServer(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	dev := &models.Device{ID: "d1", Name: "sw", Address: "10.0.0.2", Status: models.StatusOnline, CreatedAt: now, UpdatedAt: now}
	if err := r.InsertDevice(ctx, dev); err != nil {
		t.Fatalf("insert device: %v", err)
	}

	w := doRequest(t, s, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Devices[models.StatusOnline] != 1 {
		t.Errorf("online devices = %d, want 1", resp.Devices[models.StatusOnline])
	}
}
