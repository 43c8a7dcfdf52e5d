package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/config"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
)

// AutoProgressWorker periodically advances assigned tickets that stayed Open
// past the configured window to In Progress. The transition used to live in
// the frontend as a component-lifetime timer; running it server-side makes it
// a durable rule instead of one that dies on navigation.
type AutoProgressWorker struct {
	tickets *service.TicketService
	cfg     config.WorkerConfig
	logger  *zap.Logger
}

// NewAutoProgressWorker constructs the worker.
func NewAutoProgressWorker(tickets *service.TicketService, cfg config.WorkerConfig, logger *zap.Logger) *AutoProgressWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoProgressWorker{tickets: tickets, cfg: cfg, logger: logger}
}

// Run blocks, scanning on the configured interval until ctx is cancelled.
func (w *AutoProgressWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.AutoProgressInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			advanced, err := w.tickets.AutoProgressOpenTickets(ctx, w.cfg.AutoProgressWindow())
			if err != nil {
				w.logger.Warn("auto-progress scan failed", zap.Error(err))
				continue
			}
			if advanced > 0 {
				w.logger.Info("auto-progressed tickets", zap.Int("count", advanced))
			}
		}
	}
}
