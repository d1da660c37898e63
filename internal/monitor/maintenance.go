package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// runMaintenance purges acknowledged alerts past the retention window.
// Unacknowledged alerts are kept regardless of age.
func (m *Monitor) runMaintenance(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-m.cfg.RetentionPeriod)
	purged, err := m.repo.PurgeAcknowledgedAlerts(ctx, cutoff)
	if err != nil {
		m.logger.Warn("failed to purge old alerts", zap.Error(err))
		return
	}
	if purged > 0 {
		m.logger.Info("purged acknowledged alerts", zap.Int64("count", purged))
	}
}
