package probe

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// Pinger tests basic host reachability.
type Pinger interface {
	// Ping reports whether host answered within the context deadline,
	// with the measured round-trip time when it did.
	Ping(ctx context.Context, host string) (alive bool, rtt time.Duration)
}

// Compile-time interface guard.
var _ Pinger = (*ICMPPinger)(nil)

// ICMPPinger checks reachability with ICMP echo requests via pro-bing.
type ICMPPinger struct {
	count  int
	logger *zap.Logger
}

// NewICMPPinger creates a pinger sending count echo requests per probe.
func NewICMPPinger(count int, logger *zap.Logger) *ICMPPinger {
	if count < 1 {
		count = 1
	}
	return &ICMPPinger{count: count, logger: logger}
}

// Ping sends ICMP echo requests to host. The context deadline bounds the
// whole operation; an unanswered or cancelled ping reports not alive.
func (p *ICMPPinger) Ping(ctx context.Context, host string) (bool, time.Duration) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		p.logger.Debug("failed to create pinger", zap.String("host", host), zap.Error(err))
		return false, 0
	}

	pinger.Count = p.count
	if deadline, ok := ctx.Deadline(); ok {
		pinger.Timeout = time.Until(deadline)
	}
	// Windows has no unprivileged ICMP sockets.
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := pinger.Run(); runErr != nil {
			p.logger.Debug("ping failed", zap.String("host", host), zap.Error(runErr))
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return false, 0
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv > 0 {
		return true, stats.AvgRtt
	}
	return false, 0
}
