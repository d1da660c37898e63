// Package probe executes health checks against monitored entities:
// SNMP system queries and ICMP reachability for devices, ICMP plus an
// RTSP stream check for cameras. Probes are side-effect-free on the
// entity; they only return data for the status tracker to apply.
package probe

import (
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// Result is the outcome of a single probe execution. It is ephemeral:
// consumed immediately by the status tracker, never persisted directly.
type Result struct {
	EntityID     string          `json:"entity_id"`
	Success      bool            `json:"success"`
	LatencyMs    float64         `json:"latency_ms,omitempty"`
	Structured   bool            `json:"structured"` // diagnostics came from a structured (SNMP) query
	Diagnostics  models.Metadata `json:"diagnostics,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// Config holds probe deadlines and tuning.
type Config struct {
	Timeout       time.Duration `mapstructure:"probe_timeout"`  // per-stage deadline
	StreamTimeout time.Duration `mapstructure:"stream_timeout"` // RTSP sub-stage deadline
	PingCount     int           `mapstructure:"ping_count"`
	SNMPPort      int           `mapstructure:"snmp_port"` // default when a device has none configured
}

// DefaultConfig returns the default probe configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		StreamTimeout: 5 * time.Second,
		PingCount:     1,
		SNMPPort:      161,
	}
}

func latencyMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
