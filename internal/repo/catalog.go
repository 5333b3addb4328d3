package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

// ProductByID returns (nil, nil) for an unknown product. Pricing treats a
// missing product as a zero quote, not an infrastructure failure.
func (r *GormRepo) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) SizesForProduct(ctx context.Context, productID uint) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&sizes).Error; err != nil {
		return nil, err
	}
	return sizes, nil
}

func (r *GormRepo) ToppingsByIDs(ctx context.Context, ids []uint) ([]models.Topping, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var toppings []models.Topping
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&toppings).Error; err != nil {
		return nil, err
	}
	return toppings, nil
}

func (r *GormRepo) ActiveStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *GormRepo) StoreByID(ctx context.Context, id uint) (*models.Store, error) {
	var s models.Store
	err := r.DB.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
