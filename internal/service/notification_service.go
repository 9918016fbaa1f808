package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/repository"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// NotificationService serves a user's own notification feed. Users never
// see or mutate another user's notifications, admins included.
type NotificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService constructs the service.
func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *domain.User, onlyUnread bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.notifications.ListByUser(ctx, actor.ID, onlyUnread, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// UnreadCount returns the badge count for the actor.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *domain.User) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications as read. Idempotent:
// marking an already-read notification succeeds without effect.
func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID string) (*domain.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return nil, apperrors.MapError(err)
	}
	if notification.UserID != actor.ID {
		// Do not leak existence of other users' notifications.
		return nil, apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
	}
	if notification.IsRead {
		return notification, nil
	}
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return nil, apperrors.MapError(err)
	}
	notification, err = s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notification, nil
}

// MarkAllRead marks every unread notification of the actor as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) error {
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
