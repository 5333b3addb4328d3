package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

// CreateOrder inserts the order together with its attached lines.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

// OrderByID loads an order with its lines, (nil, nil) when it does not
// exist.
func (r *GormRepo) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Preload("Lines").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderByIDForUpdate locks the order row so a status transition reads and
// writes the same snapshot. Lines are not loaded.
func (r *GormRepo) OrderByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := forUpdate(r.DB.WithContext(ctx)).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) OrdersForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderLineCounts aggregates line count and total quantity per order for
// order-history listings.
type OrderLineCounts struct {
	OrderID       uint
	LineCount     int
	TotalQuantity int
}

func (r *GormRepo) OrderLineCountsFor(ctx context.Context, orderIDs []uint) (map[uint]OrderLineCounts, error) {
	if len(orderIDs) == 0 {
		return map[uint]OrderLineCounts{}, nil
	}
	var rows []OrderLineCounts
	if err := r.DB.WithContext(ctx).Model(&models.OrderLine{}).
		Select("order_id, COUNT(*) AS line_count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]OrderLineCounts, len(rows))
	for _, row := range rows {
		counts[row.OrderID] = row
	}
	return counts, nil
}

// UpdateOrder applies the given column updates to one order.
func (r *GormRepo) UpdateOrder(ctx context.Context, orderID uint, updates map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// InsertStatusEvent appends one row to the transition history.
func (r *GormRepo) InsertStatusEvent(ctx context.Context, ev *models.OrderStatusEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *GormRepo) StatusEventsForOrder(ctx context.Context, orderID uint) ([]models.OrderStatusEvent, error) {
	var events []models.OrderStatusEvent
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
