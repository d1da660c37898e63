package probe

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bluenviron/gortsplib/v5"
	"github.com/bluenviron/gortsplib/v5/pkg/base"
	"go.uber.org/zap"
)

// StreamChecker verifies that a camera's RTSP stream is being served.
type StreamChecker interface {
	// CheckStream returns nil when the stream at rtspURL is available.
	CheckStream(ctx context.Context, rtspURL, username, password string) error
}

// Compile-time interface guard.
var _ StreamChecker = (*RTSPChecker)(nil)

// RTSPChecker probes stream availability with an RTSP DESCRIBE request.
type RTSPChecker struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRTSPChecker creates a stream checker with the given per-request timeout.
func NewRTSPChecker(timeout time.Duration, logger *zap.Logger) *RTSPChecker {
	return &RTSPChecker{timeout: timeout, logger: logger}
}

// CheckStream dials the RTSP endpoint and issues a DESCRIBE. Credentials
// given separately override any embedded in the URL. The configured
// timeout bounds both dialing and the request round-trip.
func (c *RTSPChecker) CheckStream(ctx context.Context, rtspURL, username, password string) error {
	u, err := base.ParseURL(rtspURL)
	if err != nil {
		return fmt.Errorf("invalid RTSP URL %q: %w", rtspURL, err)
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	client := &gortsplib.Client{
		Scheme:       u.Scheme,
		Host:         u.Host,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	if err := client.Start(); err != nil {
		return fmt.Errorf("rtsp connect %s: %w", u.Host, err)
	}
	defer client.Close()

	if _, _, err := client.Describe(u); err != nil {
		return fmt.Errorf("rtsp describe %s: %w", u.Host, err)
	}

	c.logger.Debug("rtsp stream available", zap.String("host", u.Host))
	return nil
}
