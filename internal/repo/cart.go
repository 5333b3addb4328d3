package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

// CartLines returns every line in the user's cart, newest first.
func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CartLineByID(ctx context.Context, lineID, userID uint) (*models.CartLine, error) {
	var line models.CartLine
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// cartIdentity narrows a query to the line's full customization tuple. The
// toppings comparison is plain text equality, which the canonical column
// encoding makes equivalent to set equality.
func cartIdentity(tx *gorm.DB, line *models.CartLine) *gorm.DB {
	return tx.
		Where("user_id = ? AND product_id = ? AND size = ?", line.UserID, line.ProductID, line.Size).
		Where("sugar_level = ? AND ice_level = ? AND temperature = ?", line.SugarLevel, line.IceLevel, line.Temperature).
		Where("toppings = ?", line.Toppings)
}

// AddCartLine merges on the full customization tuple: an existing line with
// the same user, product, size, sugar, ice, temperature and topping set gets
// its quantity bumped atomically; otherwise a new line is inserted. The
// atomic "quantity + ?" update makes concurrent adds of the same tuple
// serialize instead of losing increments, and idx_cart_identity backstops
// the insert path: two first-time adds racing past the update both try to
// insert, the loser hits the unique index and folds into the winner's row.
func (r *GormRepo) AddCartLine(ctx context.Context, line *models.CartLine) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bump := func() (int64, error) {
			res := cartIdentity(tx.Model(&models.CartLine{}), line).
				Update("quantity", gorm.Expr("quantity + ?", line.Quantity))
			return res.RowsAffected, res.Error
		}
		reload := func() error { return cartIdentity(tx, line).First(line).Error }

		affected, err := bump()
		if err != nil {
			return err
		}
		if affected > 0 {
			return reload()
		}

		// Savepoint around the insert: on postgres a failed statement poisons
		// the rest of the transaction, and the duplicate-key loser still has
		// a merge to run.
		err = tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(line).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		// Lost the insert race; the winner's row is committed and visible
		// now, so the merge update lands on it.
		affected, err = bump()
		if err != nil {
			return err
		}
		if affected == 0 {
			return gorm.ErrDuplicatedKey
		}
		return reload()
	})
}

// UpdateCartLineQuantity overwrites the quantity of the user's own line.
// Ownership lives in the WHERE clause, so a foreign line id simply affects
// zero rows.
func (r *GormRepo) UpdateCartLineQuantity(ctx context.Context, lineID, userID uint, quantity int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

// SaveCartLine persists a fully loaded line after a patch update.
func (r *GormRepo) SaveCartLine(ctx context.Context, line *models.CartLine) error {
	return r.DB.WithContext(ctx).Save(line).Error
}

func (r *GormRepo) DeleteCartLine(ctx context.Context, lineID, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}

// CartQuantitySum is the badge count: the sum of quantities, not the number
// of lines.
func (r *GormRepo) CartQuantitySum(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.CartLine{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	return int(count), err
}
