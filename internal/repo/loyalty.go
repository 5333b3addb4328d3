package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByIDForUpdate locks the user row so balance reads and writes inside
// one ledger transaction cannot interleave with another.
func (r *GormRepo) UserByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := forUpdate(r.DB.WithContext(ctx)).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserLoyalty writes the new balance, and the tier when it changed.
func (r *GormRepo) UpdateUserLoyalty(ctx context.Context, userID uint, points int64, tier string) error {
	updates := map[string]any{"loyalty_points": points}
	if tier != "" {
		updates["membership_tier"] = tier
	}
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// InsertLoyaltyTransaction appends one ledger entry. Entries are never
// updated or deleted.
func (r *GormRepo) InsertLoyaltyTransaction(ctx context.Context, txn *models.LoyaltyTransaction) error {
	return r.DB.WithContext(ctx).Create(txn).Error
}

func (r *GormRepo) LoyaltyHistory(ctx context.Context, userID uint, limit, offset int) ([]models.LoyaltyTransaction, error) {
	var txns []models.LoyaltyTransaction
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
