package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

// VoucherByCode fetches a voucher by its uppercase code, (nil, nil) when the
// code does not exist.
func (r *GormRepo) VoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := r.DB.WithContext(ctx).Where("code = ?", code).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VoucherByCodeForUpdate locks the voucher row for the rest of the enclosing
// transaction. Redemption checks its counters against the locked row, so two
// orders racing for the last use of a voucher serialize here.
func (r *GormRepo) VoucherByCodeForUpdate(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := forUpdate(r.DB.WithContext(ctx)).
		Where("code = ?", code).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VoucherUsage returns the per-user redemption counter, (nil, nil) when the
// user has never used the voucher.
func (r *GormRepo) VoucherUsage(ctx context.Context, userID, voucherID uint) (*models.VoucherUsage, error) {
	var u models.VoucherUsage
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RedeemVoucher increments the global counter and the per-user counter in
// lockstep. Callers must hold the voucher row lock (VoucherByCodeForUpdate)
// in the same transaction; the usage row needs no extra lock behind it.
func (r *GormRepo) RedeemVoucher(ctx context.Context, voucherID, userID uint, now time.Time) error {
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Voucher{}).
		Where("id = ?", voucherID).
		Update("current_usage", gorm.Expr("current_usage + 1")).Error; err != nil {
		return err
	}

	usage, err := r.VoucherUsage(ctx, userID, voucherID)
	if err != nil {
		return err
	}
	if usage == nil {
		return db.Create(&models.VoucherUsage{
			UserID:     userID,
			VoucherID:  voucherID,
			TimesUsed:  1,
			LastUsedAt: now,
		}).Error
	}
	return db.Model(usage).Updates(map[string]any{
		"times_used":   gorm.Expr("times_used + 1"),
		"last_used_at": now,
	}).Error
}

// ActiveVouchers lists vouchers whose active flag is set and whose window
// contains now. Usage caps are the caller's concern.
func (r *GormRepo) ActiveVouchers(ctx context.Context, now time.Time) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("discount_value DESC").
		Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// VoucherUsagesForUser maps voucher id to the user's redemption count for
// the given vouchers.
func (r *GormRepo) VoucherUsagesForUser(ctx context.Context, userID uint, voucherIDs []uint) (map[uint]int, error) {
	if len(voucherIDs) == 0 {
		return map[uint]int{}, nil
	}
	var rows []models.VoucherUsage
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND voucher_id IN ?", userID, voucherIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	used := make(map[uint]int, len(rows))
	for _, row := range rows {
		used[row.VoucherID] = row.TimesUsed
	}
	return used, nil
}
