package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// CameraProber checks IP cameras in two stages: host reachability first,
// then stream availability. An unreachable host short-circuits to offline
// without spending the stream-check budget.
type CameraProber struct {
	pinger Pinger
	stream StreamChecker
	cfg    Config
	logger *zap.Logger
}

// NewCameraProber creates a camera prober.
func NewCameraProber(pinger Pinger, stream StreamChecker, cfg Config, logger *zap.Logger) *CameraProber {
	return &CameraProber{pinger: pinger, stream: stream, cfg: cfg, logger: logger}
}

// Probe checks one camera. Reachability and the stream check each run
// under their own deadline; the camera is online only when both pass.
func (p *CameraProber) Probe(ctx context.Context, c *models.Camera) Result {
	result := Result{EntityID: c.ID, CheckedAt: time.Now().UTC()}

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	alive, rtt := p.pinger.Ping(pingCtx, c.Address)
	cancel()

	if !alive {
		result.ErrorMessage = fmt.Sprintf("host %s unreachable", c.Address)
		return result
	}

	streamCtx, cancel := context.WithTimeout(ctx, p.cfg.StreamTimeout)
	err := p.stream.CheckStream(streamCtx, c.RTSPURL, c.Username, c.Password)
	cancel()

	if err != nil {
		p.logger.Debug("stream check failed",
			zap.String("camera_id", c.ID),
			zap.String("address", c.Address),
			zap.Error(err),
		)
		result.ErrorMessage = fmt.Sprintf("stream unavailable: %v", err)
		result.Diagnostics = models.Metadata{"host_reachable": "true"}
		return result
	}

	result.Success = true
	result.LatencyMs = latencyMs(rtt)
	result.Diagnostics = models.Metadata{"host_reachable": "true", "stream_available": "true"}
	return result
}
