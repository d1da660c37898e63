package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// WebhookConfig holds chat webhook settings. An empty URL leaves the
// channel unconfigured.
type WebhookConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
}

// severityColors maps alert severity to attachment sidebar colors,
// matching the convention chat clients render.
var severityColors = map[models.Severity]string{
	models.SeverityCritical: "#FF0000",
	models.SeverityHigh:     "#FFA500",
	models.SeverityMedium:   "#FFFF00",
	models.SeverityLow:      "#00FF00",
	models.SeverityInfo:     "#0000FF",
}

type webhookField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type webhookAttachment struct {
	Color     string         `json:"color"`
	Title     string         `json:"title"`
	Text      string         `json:"text"`
	Fields    []webhookField `json:"fields"`
	Timestamp int64          `json:"ts"`
}

type webhookPayload struct {
	Username    string              `json:"username,omitempty"`
	Attachments []webhookAttachment `json:"attachments"`
}

// WebhookChannel delivers alerts to a chat webhook URL (Slack-compatible
// payload with a colored attachment per severity).
type WebhookChannel struct {
	cfg    WebhookConfig
	client *http.Client
}

var _ Channel = (*WebhookChannel)(nil)

func NewWebhookChannel(cfg WebhookConfig) *WebhookChannel {
	if cfg.Username == "" {
		cfg.Username = "SiteWatch"
	}
	return &WebhookChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Send(ctx context.Context, ac AlertContext) Outcome {
	if c.cfg.URL == "" {
		return Outcome{Channel: c.Name(), Status: OutcomeSkipped, Detail: "webhook url not configured"}
	}

	body, err := json.Marshal(c.payload(ac))
	if err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SiteWatch-Webhook/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("post: %v", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("endpoint returned %d", resp.StatusCode)}
	}
	return Outcome{Channel: c.Name(), Status: OutcomeSent, Detail: fmt.Sprintf("status %d", resp.StatusCode)}
}

func (c *WebhookChannel) payload(ac AlertContext) webhookPayload {
	color, ok := severityColors[ac.Alert.Severity]
	if !ok {
		color = severityColors[models.SeverityInfo]
	}

	fields := []webhookField{
		{Title: "Severity", Value: string(ac.Alert.Severity), Short: true},
	}
	if ac.Alert.EntityKind != "" {
		fields = append(fields, webhookField{Title: "Kind", Value: string(ac.Alert.EntityKind), Short: true})
	}
	if ac.EntityAddr != "" {
		fields = append(fields, webhookField{Title: "Address", Value: ac.EntityAddr, Short: true})
	}

	return webhookPayload{
		Username: c.cfg.Username,
		Attachments: []webhookAttachment{{
			Color:     color,
			Title:     fmt.Sprintf("SiteWatch: %s", ac.EntityName),
			Text:      ac.Alert.Message,
			Fields:    fields,
			Timestamp: ac.Alert.CreatedAt.Unix(),
		}},
	}
}
