package repo

import (
	"context"

	"github.com/casaphe/coffee_shop/internal/models"
)

func (r *GormRepo) InsertNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *GormRepo) NotificationsForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var notes []models.Notification
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *GormRepo) UnreadNotificationCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead flips one notification owned by the user. Zero rows
// affected means the id is unknown or foreign.
func (r *GormRepo) MarkNotificationRead(ctx context.Context, id, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) MarkAllNotificationsRead(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
