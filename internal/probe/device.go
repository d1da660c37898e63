package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// DeviceProber checks network devices: a structured SNMP query when a
// community is configured, with plain ICMP reachability as fallback.
type DeviceProber struct {
	pinger Pinger
	snmp   SystemQuerier
	cfg    Config
	logger *zap.Logger
}

// NewDeviceProber creates a device prober.
func NewDeviceProber(pinger Pinger, snmp SystemQuerier, cfg Config, logger *zap.Logger) *DeviceProber {
	return &DeviceProber{pinger: pinger, snmp: snmp, cfg: cfg, logger: logger}
}

// Probe checks one device. SNMP success implies reachability and yields
// system diagnostics; on any SNMP failure the prober falls back to ICMP,
// where success still counts as online but without structured data.
// Each stage is bounded by the configured timeout.
func (p *DeviceProber) Probe(ctx context.Context, d *models.Device) Result {
	result := Result{EntityID: d.ID, CheckedAt: time.Now().UTC()}

	if d.SNMPCommunity != "" {
		snmpCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		start := time.Now()
		port := d.SNMPPort
		if port == 0 {
			port = p.cfg.SNMPPort
		}
		info, err := p.snmp.GetSystemInfo(snmpCtx, d.Address, port, d.SNMPCommunity)
		cancel()

		if err == nil {
			result.Success = true
			result.Structured = true
			result.LatencyMs = latencyMs(time.Since(start))
			result.Diagnostics = systemInfoDiagnostics(info)
			return result
		}

		p.logger.Debug("SNMP probe failed, falling back to ping",
			zap.String("device_id", d.ID),
			zap.String("address", d.Address),
			zap.Error(err),
		)
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	alive, rtt := p.pinger.Ping(pingCtx, d.Address)
	cancel()

	if !alive {
		result.ErrorMessage = fmt.Sprintf("host %s unreachable", d.Address)
		return result
	}

	result.Success = true
	result.LatencyMs = latencyMs(rtt)
	return result
}

// systemInfoDiagnostics flattens SNMP system fields into probe metadata.
// Empty fields are omitted so they never clobber previously stored values.
func systemInfoDiagnostics(info *SystemInfo) models.Metadata {
	diag := models.Metadata{}
	if info.Name != "" {
		diag["sysName"] = info.Name
	}
	if info.Description != "" {
		diag["sysDescr"] = info.Description
	}
	if info.Location != "" {
		diag["sysLocation"] = info.Location
	}
	if info.Contact != "" {
		diag["sysContact"] = info.Contact
	}
	if info.UpTime > 0 {
		diag["sysUpTimeSeconds"] = strconv.FormatInt(int64(info.UpTime.Seconds()), 10)
	}
	return diag
}
