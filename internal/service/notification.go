package service

import (
	"context"
	"fmt"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// NotificationService is the read side of notifications; writes happen in
// the notify package.
type NotificationService struct {
	Repo *repo.GormRepo
}

func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	notes, err := s.Repo.NotificationsForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %v", ErrPersistence, err)
	}
	return notes, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.Repo.UnreadNotificationCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: unread count: %v", ErrPersistence, err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	affected, err := s.Repo.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("%w: mark read: %v", ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification %d", ErrNotFound, id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.Repo.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: mark all read: %v", ErrPersistence, err)
	}
	return nil
}
