// Package keepalive periodically requests the service's own public
// /keep-alive endpoint so hosting platforms that idle out quiet
// instances keep it running.
package keepalive

import (
	"context"
	"log/slog"
	"time"

	"geolink/internal/api"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 10 * time.Minute

// Target is the endpoint the pinger calls on every tick.
// *api.Client satisfies it.
type Target interface {
	KeepAlive(ctx context.Context) (api.KeepAliveResponse, error)
}

// Pinger is a suture.Service that calls Target once per interval.
// A failed call is logged and the next attempt waits for the next tick.
type Pinger struct {
	target   Target
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	name     string
}

// NewPinger creates a pinger. A non-positive interval uses DefaultInterval.
func NewPinger(target Target, interval time.Duration, logger *slog.Logger) *Pinger {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := interval / 2
	if timeout <= 0 || timeout > 30*time.Second {
		timeout = 30 * time.Second
	}
	return &Pinger{
		target:   target,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		name:     "keepalive-pinger",
	}
}

// Serve implements suture.Service.
func (p *Pinger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("keep-alive pinger started", "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("keep-alive pinger stopped")
			return ctx.Err()
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.target.KeepAlive(pingCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("keep-alive ping failed", "error", err)
		return
	}
	p.logger.Debug("keep-alive ping ok", "status", resp.Status, "time", resp.Time)
}

// String implements fmt.Stringer for supervisor logging.
func (p *Pinger) String() string {
	return p.name
}
