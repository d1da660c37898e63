// Package models defines the shared data types for SiteWatch: monitored
// entities (devices, cameras) and the alerts raised on status transitions.
package models

import "time"

// Status represents the recorded reachability state of a monitored entity.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown" // initial state before the first probe
)

// EntityKind distinguishes the two monitored entity types.
type EntityKind string

const (
	KindDevice EntityKind = "device"
	KindCamera EntityKind = "camera"
)

// Metadata holds free-form probe diagnostics keyed by field name.
// Updates are per-key merges; keys are never dropped implicitly.
type Metadata map[string]string

// Entity is the common surface of monitored devices and cameras.
// The scheduler and alerting pipeline operate on this capability,
// not on the concrete types.
type Entity interface {
	EntityID() string
	EntityKind() EntityKind
	DisplayName() string
	NetworkAddress() string
	CurrentStatus() Status
}

// Device represents a monitored network device (switch, router, etc.).
type Device struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Vendor        string     `json:"vendor,omitempty"`
	DeviceType    string     `json:"device_type,omitempty"` // switch, router, firewall, ...
	SNMPCommunity string     `json:"snmp_community,omitempty"`
	SNMPPort      int        `json:"snmp_port,omitempty"`
	Status        Status     `json:"status"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
	Metadata      Metadata   `json:"metadata,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (d *Device) EntityID() string { return d.ID }
func (d *Device) EntityKind() EntityKind { return KindDevice }
func (d *Device) DisplayName() string { return d.Name }
func (d *Device) NetworkAddress() string { return d.Address }
func (d *Device) CurrentStatus() Status { return d.Status }

// Camera represents a monitored IP camera with an RTSP stream.
type Camera struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	RTSPURL   string     `json:"rtsp_url"`
	Username  string     `json:"username,omitempty"`
	Password  string     `json:"-"`
	Location  string     `json:"location,omitempty"`
	Status    Status     `json:"status"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Camera) EntityID() string { return c.ID }
func (c *Camera) EntityKind() EntityKind { return KindCamera }
func (c *Camera) DisplayName() string { return c.Name }
func (c *Camera) NetworkAddress() string { return c.Address }
func (c *Camera) CurrentStatus() Status { return c.Status }

// Compile-time interface guards.
var (
	_ Entity = (*Device)(nil)
	_ Entity = (*Camera)(nil)
)
