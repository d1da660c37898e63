package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"
)

// EmailConfig holds SMTP delivery settings. An empty Host or empty
// recipient list leaves the channel unconfigured.
type EmailConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// EmailChannel delivers alerts over SMTP.
type EmailChannel struct {
	cfg EmailConfig
}

var _ Channel = (*EmailChannel)(nil)

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, ac AlertContext) Outcome {
	if c.cfg.Host == "" || len(c.cfg.To) == 0 {
		return Outcome{Channel: c.Name(), Status: OutcomeSkipped, Detail: "smtp not configured"}
	}

	msg := mail.NewMsg()
	if err := msg.From(c.cfg.From); err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("invalid sender: %v", err)}
	}
	if err := msg.To(c.cfg.To...); err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("invalid recipient: %v", err)}
	}
	msg.Subject(fmt.Sprintf("[%s] SiteWatch alert: %s", strings.ToUpper(string(ac.Alert.Severity)), ac.EntityName))
	msg.SetBodyString(mail.TypeTextPlain, emailBody(ac))

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("smtp client: %v", err)}
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return Outcome{Channel: c.Name(), Status: OutcomeFailed, Detail: fmt.Sprintf("send: %v", err)}
	}
	return Outcome{Channel: c.Name(), Status: OutcomeSent, Detail: strings.Join(c.cfg.To, ", ")}
}

func emailBody(ac AlertContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", ac.Alert.Message)
	fmt.Fprintf(&b, "Severity: %s\n", ac.Alert.Severity)
	if ac.Alert.EntityKind != "" {
		fmt.Fprintf(&b, "Entity:   %s (%s)\n", ac.EntityName, string(ac.Alert.EntityKind))
	}
	if ac.EntityAddr != "" {
		fmt.Fprintf(&b, "Address:  %s\n", ac.EntityAddr)
	}
	fmt.Fprintf(&b, "Time:     %s\n", ac.Alert.CreatedAt.UTC().Format(time.RFC3339))
	return b.String()
}
