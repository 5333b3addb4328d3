package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/notify"
	"github.com/casaphe/coffee_shop/internal/pricing"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// Preparation time estimate: a fixed base, a per-unit slope, and an offset
// per order type.
const (
	basePrepMinutes    = 15
	perItemPrepMinutes = 3
	pickupExtraMinutes = 5
	deliveryExtraMin   = 30
)

type OrderService struct {
	Repo     *repo.GormRepo
	Cart     *CartService
	Loyalty  *LoyaltyService
	Notifier *notify.Notifier

	// DeliveryKM is the assumed delivery distance for the fee schedule.
	// Zero falls back to the pricing default.
	DeliveryKM float64
}

type CreateOrderInput struct {
	OrderType       string
	PaymentMethod   string
	StoreID         *uint
	DeliveryAddress string
	TableNumber     string
	Notes           string
	VoucherCode     string
}

func validOrderType(t string) bool {
	return t == models.OrderTypePickup || t == models.OrderTypeDelivery || t == models.OrderTypeDineIn
}

func validPaymentMethod(m string) bool {
	switch m {
	case models.PaymentMethodCash, models.PaymentMethodMomo, models.PaymentMethodShopeePay,
		models.PaymentMethodZaloPay, models.PaymentMethodApplePay, models.PaymentMethodGooglePay,
		models.PaymentMethodCard:
		return true
	}
	return false
}

func (in CreateOrderInput) validate() error {
	if !validOrderType(in.OrderType) {
		return fmt.Errorf("%w: unknown order type %q", ErrValidation, in.OrderType)
	}
	if !validPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}
	switch in.OrderType {
	case models.OrderTypePickup:
		if in.StoreID == nil {
			return fmt.Errorf("%w: pickup orders need a store", ErrValidation)
		}
	case models.OrderTypeDelivery:
		if in.DeliveryAddress == "" {
			return fmt.Errorf("%w: delivery orders need an address", ErrValidation)
		}
	case models.OrderTypeDineIn:
		if in.TableNumber == "" {
			return fmt.Errorf("%w: dine-in orders need a table number", ErrValidation)
		}
	}
	return nil
}

// CreateFromCart materializes the user's cart into an order. Everything
// that must hold together holds together: the order, its frozen lines, the
// voucher counters and the cart clear commit or roll back as one
// transaction. The loyalty credit and the notification come after the
// commit and are best-effort.
func (s *OrderService) CreateFromCart(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := logging.FromContext(ctx).With("service", "order", "user_id", userID)
	now := time.Now()

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if in.StoreID != nil {
			store, err := tx.StoreByID(ctx, *in.StoreID)
			if err != nil {
				return err
			}
			if store == nil || !store.IsActive {
				return fmt.Errorf("%w: store %d is unknown or inactive", ErrValidation, *in.StoreID)
			}
		}

		summary, err := summarizeCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(summary.Lines) == 0 {
			return fmt.Errorf("%w: nothing to order", ErrEmptyCart)
		}

		// An unusable voucher reduces to "no discount": the order still
		// goes through. The rejection itself has to stay visible.
		var discount int64
		var applied *models.Voucher
		if in.VoucherCode != "" {
			code := NormalizeCode(in.VoucherCode)
			v, err := tx.VoucherByCodeForUpdate(ctx, code)
			if err != nil {
				return err
			}
			switch {
			case v == nil:
				l.Warn("voucher rejected", "code", code, "reason", ReasonVoucherNotFound)
			default:
				var timesUsed int
				usage, err := tx.VoucherUsage(ctx, userID, v.ID)
				if err != nil {
					return err
				}
				if usage != nil {
					timesUsed = usage.TimesUsed
				}
				if reason := voucherReason(v, timesUsed, summary.Subtotal, now); reason != "" {
					l.Warn("voucher rejected", "code", code, "reason", reason)
				} else {
					discount = ComputeDiscount(summary.Subtotal, v)
					applied = v
				}
			}
		}

		var fee int64
		if in.OrderType == models.OrderTypeDelivery {
			km := s.DeliveryKM
			if km <= 0 {
				km = pricing.DefaultDeliveryDistanceKM
			}
			fee = pricing.DeliveryFee(km, summary.Subtotal)
		}

		lines := make([]models.OrderLine, 0, len(summary.Lines))
		for _, item := range summary.Lines {
			lines = append(lines, models.OrderLine{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Size:        item.Size,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				SugarLevel:  item.SugarLevel,
				IceLevel:    item.IceLevel,
				Temperature: item.Temperature,
				Toppings:    item.Toppings,
				ToppingCost: item.ToppingCost,
				Subtotal:    item.LineSubtotal,
			})
		}

		order = &models.Order{
			UserID:             userID,
			OrderNumber:        newOrderNumber(now),
			OrderType:          in.OrderType,
			StoreID:            in.StoreID,
			DeliveryAddress:    in.DeliveryAddress,
			TableNumber:        in.TableNumber,
			Notes:              in.Notes,
			Subtotal:           summary.Subtotal,
			DiscountAmount:     discount,
			DeliveryFee:        fee,
			Total:              summary.Subtotal - discount + fee,
			PaymentMethod:      in.PaymentMethod,
			PaymentStatus:      models.PaymentStatusPending,
			Status:             models.OrderStatusPending,
			EstimatedReadyTime: estimatedReadyTime(now, in.OrderType, summary.ItemCount),
			Lines:              lines,
		}
		if applied != nil {
			order.VoucherCode = applied.Code
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if applied != nil {
			if err := tx.RedeemVoucher(ctx, applied.ID, userID, now); err != nil {
				return err
			}
		}
		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		if isSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}

	// Best-effort from here on. Points are additive, so a failed credit is
	// safe to replay from this log line.
	if points := s.Loyalty.PointsEarned(order.Total); points > 0 {
		orderID := order.ID
		desc := fmt.Sprintf("Order #%s", order.OrderNumber)
		if err := s.Loyalty.Credit(ctx, userID, points, desc, &orderID); err != nil {
			l.Error("loyalty credit failed",
				"order_id", order.ID,
				"order_number", order.OrderNumber,
				"points", points,
				"error", err,
			)
		}
	}
	s.Notifier.OrderCreated(ctx, order)

	l.Info("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"total", order.Total,
	)
	return order, nil
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newOrderNumber builds ORD-YYYYMMDD-XXXXXX. Uniqueness is enforced by the
// column's unique index; a collision fails the transaction, which is safe
// to retry because the rollback left no side effects behind.
func newOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

func estimatedReadyTime(now time.Time, orderType string, itemCount int) time.Time {
	minutes := basePrepMinutes + perItemPrepMinutes*itemCount
	switch orderType {
	case models.OrderTypePickup:
		minutes += pickupExtraMinutes
	case models.OrderTypeDelivery:
		minutes += deliveryExtraMin
	}
	return now.Add(time.Duration(minutes) * time.Minute)
}

// Get loads an order with its lines without an ownership check; it serves
// staff and internal callers.
func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: load order: %v", ErrPersistence, err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return order, nil
}

// GetForUser is Get with ownership enforced. A foreign order reads as not
// found rather than forbidden; strangers learn nothing.
func (s *OrderService) GetForUser(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return order, nil
}

// OrderListItem is one row of a user's order history.
type OrderListItem struct {
	models.Order
	LineCount     int `json:"line_count"`
	TotalQuantity int `json:"total_quantity"`
}

func (s *OrderService) ForUser(ctx context.Context, userID uint, limit, offset int) ([]OrderListItem, error) {
	orders, err := s.Repo.OrdersForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrPersistence, err)
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	counts, err := s.Repo.OrderLineCountsFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: count order lines: %v", ErrPersistence, err)
	}

	items := make([]OrderListItem, 0, len(orders))
	for _, o := range orders {
		c := counts[o.ID]
		items = append(items, OrderListItem{Order: o, LineCount: c.LineCount, TotalQuantity: c.TotalQuantity})
	}
	return items, nil
}

type TrackingStep struct {
	Status    string `json:"status"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

type OrderTracking struct {
	Order              *models.Order  `json:"order"`
	CurrentStatus      string         `json:"current_status"`
	Timeline           []TrackingStep `json:"timeline"`
	EstimatedReadyTime time.Time      `json:"estimated_ready_time"`
}

var trackingLabels = map[string]string{
	models.OrderStatusPending:    "Order received",
	models.OrderStatusConfirmed:  "Confirmed",
	models.OrderStatusPreparing:  "Preparing",
	models.OrderStatusReady:      "Ready",
	models.OrderStatusDelivering: "Out for delivery",
	models.OrderStatusCompleted:  "Completed",
}

// Track renders the fulfillment timeline for the customer. Cancelled orders
// short-circuit with an empty timeline; non-delivery orders skip the
// delivering step.
func (s *OrderService) Track(ctx context.Context, orderID, userID uint) (*OrderTracking, error) {
	order, err := s.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	tracking := &OrderTracking{
		Order:              order,
		CurrentStatus:      order.Status,
		EstimatedReadyTime: order.EstimatedReadyTime,
	}
	if order.Status == models.OrderStatusCancelled {
		return tracking, nil
	}

	chain := []string{
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing,
		models.OrderStatusReady, models.OrderStatusDelivering, models.OrderStatusCompleted,
	}
	current := -1
	for i, status := range chain {
		if status == order.Status {
			current = i
			break
		}
	}

	for i, status := range chain {
		if status == models.OrderStatusDelivering && order.OrderType != models.OrderTypeDelivery {
			continue
		}
		tracking.Timeline = append(tracking.Timeline, TrackingStep{
			Status:    status,
			Label:     trackingLabels[status],
			Completed: i <= current,
		})
	}
	return tracking, nil
}

// ReorderResult reports how many lines of a past order made it back into
// the cart.
type ReorderResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Reorder puts every line of a past order back into the cart with the same
// customization. Lines whose product has since vanished or gone off sale
// are skipped, not fatal.
func (s *OrderService) Reorder(ctx context.Context, orderID, userID uint) (*ReorderResult, error) {
	order, err := s.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	result := &ReorderResult{}
	for _, line := range order.Lines {
		_, err := s.Cart.AddItem(ctx, userID, AddItemInput{
			ProductID:   line.ProductID,
			Size:        line.Size,
			Quantity:    line.Quantity,
			SugarLevel:  line.SugarLevel,
			IceLevel:    line.IceLevel,
			Temperature: line.Temperature,
			Toppings:    line.Toppings,
		})
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, ErrValidation):
			result.Skipped++
		default:
			return nil, err
		}
	}
	return result, nil
}
