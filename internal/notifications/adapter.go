package notifications

import (
	"context"
	"log/slog"

	"kai/internal/logging"
	"kai/internal/replay"
)

// ReplayNotifier adapts Service to the replay loop's event sink, logging
// delivery failures instead of surfacing them.
type ReplayNotifier struct {
	service Service
	logger  *slog.Logger
}

// NewReplayNotifier wraps a Service for use by the replay manager.
func NewReplayNotifier(service Service, logger *slog.Logger) *ReplayNotifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ReplayNotifier{
		service: service,
		logger:  logging.WithComponent(logger, "notifications"),
	}
}

func (r *ReplayNotifier) DrainFinished(ctx context.Context, result replay.DrainResult) {
	if err := r.service.NotifyDrainFinished(ctx, result); err != nil {
		r.logger.Warn("drain notification failed", logging.Error(err))
	}
}

func (r *ReplayNotifier) SessionExpired(ctx context.Context) {
	if err := r.service.NotifySessionExpired(ctx); err != nil {
		r.logger.Warn("session expiry notification failed", logging.Error(err))
	}
}
