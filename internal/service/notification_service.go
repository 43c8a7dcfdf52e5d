package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/persistence"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

// NotificationService owns the per-user notification feed and its read state.
// Unread counts are cached in Redis because the frontend polls them every
// 30 seconds per mounted bell indicator.
type NotificationService struct {
	repo   repository.NotificationRepository
	cache  *persistence.Redis
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(repo repository.NotificationRepository, cache *persistence.Redis, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, cache: cache, logger: logger}
}

// List returns the user's feed newest-first with the authoritative unread count.
func (n *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, int, error) {
	items, err := n.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	unread := 0
	for i := range items {
		if !items[i].Read {
			unread++
		}
	}
	n.cache.SetUnreadCount(ctx, userID, unread)
	return items, unread, nil
}

// UnreadCount serves the lightweight poll, preferring the cache.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if count, ok := n.cache.GetUnreadCount(ctx, userID); ok {
		return count, nil
	}
	count, err := n.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	n.cache.SetUnreadCount(ctx, userID, count)
	return count, nil
}

// MarkRead flips one notification to read and returns the authoritative
// remaining unread count, so clients never drift by decrementing locally.
// Marking an already-read notification is a no-op.
func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) (int, error) {
	if err := n.repo.MarkRead(ctx, userID, id); err != nil {
		return 0, apperrors.MapError(err)
	}
	n.cache.InvalidateUnreadCount(ctx, userID)
	count, err := n.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	n.cache.SetUnreadCount(ctx, userID, count)
	return count, nil
}

// MarkAllRead clears the user's entire unread set.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.repo.MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	n.cache.SetUnreadCount(ctx, userID, 0)
	return nil
}

// Notify stores a new notification and invalidates the unread cache.
func (n *NotificationService) Notify(ctx context.Context, notification *domain.Notification) error {
	if notification.UserID == "" {
		return nil
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		n.logger.Warn("notification create failed",
			zap.String("user_id", notification.UserID), zap.Error(err))
		return err
	}
	n.cache.InvalidateUnreadCount(ctx, notification.UserID)
	return nil
}
