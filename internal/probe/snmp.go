package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// SNMPv2-MIB system group (1.3.6.1.2.1.1).
const (
	oidSysDescr    = "1.3.6.1.2.1.1.1.0"
	oidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	oidSysContact  = "1.3.6.1.2.1.1.4.0"
	oidSysName     = "1.3.6.1.2.1.1.5.0"
	oidSysLocation = "1.3.6.1.2.1.1.6.0"
)

// SystemInfo holds the SNMP system group fields used as probe diagnostics.
type SystemInfo struct {
	Description string        // sysDescr
	UpTime      time.Duration // sysUpTime
	Contact     string        // sysContact
	Name        string        // sysName
	Location    string        // sysLocation
}

// SystemQuerier retrieves SNMP system information from a device.
type SystemQuerier interface {
	GetSystemInfo(ctx context.Context, host string, port int, community string) (*SystemInfo, error)
}

// Compile-time interface guard.
var _ SystemQuerier = (*SNMPQuerier)(nil)

// SNMPQuerier queries devices over SNMPv2c using gosnmp.
type SNMPQuerier struct {
	logger *zap.Logger
}

// NewSNMPQuerier creates an SNMP system-group querier.
func NewSNMPQuerier(logger *zap.Logger) *SNMPQuerier {
	return &SNMPQuerier{logger: logger}
}

// GetSystemInfo performs an SNMP GET of the system group. A response is
// considered successful when it contains at least sysDescr; partial
// failures on the remaining OIDs are tolerated.
func (q *SNMPQuerier) GetSystemInfo(ctx context.Context, host string, port int, community string) (*SystemInfo, error) {
	if port <= 0 || port > 65535 {
		port = 161
	}

	g := &gosnmp.GoSNMP{
		Target:    host,
		Port:      uint16(port),
		Version:   gosnmp.Version2c,
		Community: community,
		Timeout:   5 * time.Second,
		Retries:   1,
		Context:   ctx,
	}
	if deadline, ok := ctx.Deadline(); ok {
		g.Timeout = time.Until(deadline)
	}

	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}
	defer func() { _ = g.Conn.Close() }()

	oids := []string{oidSysDescr, oidSysUpTime, oidSysContact, oidSysName, oidSysLocation}
	result, err := g.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("SNMP GET system group: %w", err)
	}

	info := &SystemInfo{}
	for _, pdu := range result.Variables {
		if pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance {
			continue
		}
		switch pdu.Name {
		case "." + oidSysDescr:
			info.Description = parsePDUString(pdu)
		case "." + oidSysUpTime:
			info.UpTime = parsePDUUpTime(pdu)
		case "." + oidSysContact:
			info.Contact = parsePDUString(pdu)
		case "." + oidSysName:
			info.Name = parsePDUString(pdu)
		case "." + oidSysLocation:
			info.Location = parsePDUString(pdu)
		}
	}

	if info.Description == "" {
		return nil, fmt.Errorf("SNMP response from %s missing sysDescr", host)
	}

	q.logger.Debug("SNMP system info retrieved",
		zap.String("host", host),
		zap.String("name", info.Name),
		zap.String("descr", info.Description),
	)

	return info, nil
}

// parsePDUString extracts a string value from an SNMP PDU.
func parsePDUString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// parsePDUUpTime converts a TimeTicks PDU (hundredths of a second) to a duration.
func parsePDUUpTime(pdu gosnmp.SnmpPDU) time.Duration {
	ticks := gosnmp.ToBigInt(pdu.Value)
	if ticks == nil {
		return 0
	}
	return time.Duration(ticks.Int64()) * 10 * time.Millisecond
}
