package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// UnreadPollInterval refreshes the notification badge.
	UnreadPollInterval = 30 * time.Second
	// DetailPollInterval refreshes an open ticket's comment thread.
	DetailPollInterval = 10 * time.Second
)

// Poll runs fn immediately and then on every tick until the context is
// cancelled. Errors are logged and the loop keeps going; a flaky network
// must not kill the badge.
func Poll(ctx context.Context, interval time.Duration, logger *zap.Logger, fn func(context.Context) error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("poll tick failed", zap.Error(err))
		}
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// PollUnread keeps the tracker's badge fresh; cancel the context to stop.
func PollUnread(ctx context.Context, tracker *NotificationTracker, logger *zap.Logger) {
	Poll(ctx, UnreadPollInterval, logger, tracker.RefreshUnread)
}

// PollTicket keeps one ticket's detail view fresh while it is open.
func PollTicket(ctx context.Context, store *TicketStore, ticketID string, logger *zap.Logger) {
	Poll(ctx, DetailPollInterval, logger, func(ctx context.Context) error {
		return store.Refresh(ctx, ticketID)
	})
}
