package models

import "time"

// Severity classifies alert urgency, ordered from least to most urgent.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank maps each severity to its urgency order.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Valid reports whether s is a recognized severity value.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is at least as urgent as min.
// Unrecognized severities are treated as least urgent.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// Alert is a persisted record of an alert-worthy event. Most alerts are
// produced by status transitions; system-level alerts carry no entity
// reference. An alert is mutated only by acknowledgment.
type Alert struct {
	ID             string     `json:"id"`
	EntityID       string     `json:"entity_id,omitempty"` // empty for system-level alerts
	EntityKind     EntityKind `json:"entity_kind,omitempty"`
	Severity       Severity   `json:"severity"`
	Message        string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}
