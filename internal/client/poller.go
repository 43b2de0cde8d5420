package client

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often UnreadPoller asks for the unread count.
const DefaultPollInterval = 30 * time.Second

// UnreadPoller periodically fetches the unread message count.
type UnreadPoller struct {
	Client   *Client
	Interval time.Duration
	// OnCount receives every successfully fetched count.
	OnCount func(int)
}

// Run polls once immediately and then every Interval until ctx is
// cancelled. Failed polls are logged and polling continues.
func (p *UnreadPoller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start runs the poller in its own goroutine. The returned channel closes
// once it has stopped.
func (p *UnreadPoller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	return done
}

func (p *UnreadPoller) poll(ctx context.Context) {
	if !p.Client.Session().Valid() {
		return
	}
	n, err := p.Client.UnreadCount(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("unread poll failed", "error", err)
		}
		return
	}
	if p.OnCount != nil {
		p.OnCount(n)
	}
}
