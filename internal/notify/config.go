package notify

import "time"

// Config is the notifications section of the runtime configuration.
type Config struct {
	// MinSeverity is the lowest severity that triggers delivery.
	// Alerts below it are persisted but not dispatched.
	MinSeverity string        `mapstructure:"min_severity"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Email       EmailConfig   `mapstructure:"email"`
	Webhook     WebhookConfig `mapstructure:"webhook"`
}

// DefaultConfig returns the notification defaults.
func DefaultConfig() Config {
	return Config{
		MinSeverity: "high",
		Timeout:     10 * time.Second,
	}
}

// Channels builds the channel set from the configuration. Unconfigured
// channels are still included; they report skipped outcomes so operators
// can see which paths are inactive.
func (c Config) Channels() []Channel {
	return []Channel{
		NewEmailChannel(c.Email),
		NewWebhookChannel(c.Webhook),
	}
}
