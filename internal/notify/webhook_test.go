package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

func TestWebhookChannelSendsColoredAttachment(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(WebhookConfig{URL: srv.URL})
	out := ch.Send(context.Background(), AlertContext{
		Alert:      testAlert(),
		EntityName: "core-sw1",
		EntityAddr: "10.0.0.2",
	})

	if out.Status != OutcomeSent {
		t.Fatalf("status = %s (%s), want sent", out.Status, out.Detail)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(got.Attachments))
	}
	att := got.Attachments[0]
	if att.Color != "#FFA500" {
		t.Errorf("color = %q, want high severity orange", att.Color)
	}
	if att.Text != "Device core-sw1 (10.0.0.2) went offline" {
		t.Errorf("text = %q", att.Text)
	}
}

func TestWebhookChannelFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(WebhookConfig{URL: srv.URL})
	out := ch.Send(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1"})
	if out.Status != OutcomeFailed {
		t.Fatalf("status = %s, want failed", out.Status)
	}
}

func TestWebhookChannelSkippedWithoutURL(t *testing.T) {
	ch := NewWebhookChannel(WebhookConfig{})
	out := ch.Send(context.Background(), AlertContext{Alert: testAlert(), EntityName: "core-sw1"})
	if out.Status != OutcomeSkipped {
		t.Fatalf("status = %s, want skipped", out.Status)
	}
}

func TestSeverityColorFallback(t *testing.T) {
	a := testAlert()
	a.Severity = models.Severity("bogus")
	a.CreatedAt = time.Now()
	ch := NewWebhookChannel(WebhookConfig{URL: "http://example.invalid"})
	p := ch.payload(AlertContext{Alert: a, EntityName: "x"})
	if p.Attachments[0].Color != "#0000FF" {
		t.Errorf("color = %q, want info blue fallback", p.Attachments[0].Color)
	}
}
