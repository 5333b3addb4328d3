package service

import (
	"context"
	"fmt"
	"time"

	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// nextStatuses is the full transition schedule. Delivery orders pass
// through delivering between ready and completed; everyone else goes
// straight from ready to completed. Cancellation exists only while the
// kitchen has not started: pending or confirmed. Completed and cancelled
// are terminal.
func nextStatuses(orderType, current string) []string {
	switch current {
	case models.OrderStatusPending:
		return []string{models.OrderStatusConfirmed, models.OrderStatusCancelled}
	case models.OrderStatusConfirmed:
		return []string{models.OrderStatusPreparing, models.OrderStatusCancelled}
	case models.OrderStatusPreparing:
		return []string{models.OrderStatusReady}
	case models.OrderStatusReady:
		if orderType == models.OrderTypeDelivery {
			return []string{models.OrderStatusDelivering}
		}
		return []string{models.OrderStatusCompleted}
	case models.OrderStatusDelivering:
		return []string{models.OrderStatusCompleted}
	default:
		return nil
	}
}

func canTransition(orderType, from, to string) bool {
	for _, status := range nextStatuses(orderType, from) {
		if status == to {
			return true
		}
	}
	return false
}

func knownStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing,
		models.OrderStatusReady, models.OrderStatusDelivering, models.OrderStatusCompleted,
		models.OrderStatusCancelled:
		return true
	}
	return false
}

// TransitionStatus moves an order along its lifecycle. The status write is
// the primary transaction; the history row and the customer notification
// follow after the commit and may fail without undoing it, though never
// silently. An out-of-schedule or unknown target leaves the order
// untouched.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID uint, newStatus string, actor uint, notes string) (*models.Order, error) {
	if !knownStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}

	var order *models.Order
	var oldStatus string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.OrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		oldStatus = order.Status
		if !canTransition(order.OrderType, oldStatus, newStatus) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, oldStatus, newStatus)
		}

		now := time.Now()
		updates := map[string]any{"status": newStatus}
		switch newStatus {
		case models.OrderStatusCompleted:
			updates["completed_at"] = now
			order.CompletedAt = &now
		case models.OrderStatusCancelled:
			updates["cancelled_at"] = now
			order.CancelledAt = &now
		}
		order.Status = newStatus
		return tx.UpdateOrder(ctx, orderID, updates)
	})
	if err != nil {
		if isSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: transition status: %v", ErrPersistence, err)
	}

	s.recordTransition(ctx, order, oldStatus, newStatus, actor, notes)
	return order, nil
}

// Cancel is the customer-facing cancellation: only the owner may cancel,
// only from pending or confirmed, and the reason is kept on the order.
// Loyalty points and voucher usage already granted stay as they are.
func (s *OrderService) Cancel(ctx context.Context, orderID, requestingUser uint, reason string) (*models.Order, error) {
	var order *models.Order
	var oldStatus string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.OrderByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil || order.UserID != requestingUser {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		oldStatus = order.Status
		if !canTransition(order.OrderType, oldStatus, models.OrderStatusCancelled) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, oldStatus, models.OrderStatusCancelled)
		}

		now := time.Now()
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancellationReason = reason
		return tx.UpdateOrder(ctx, orderID, map[string]any{
			"status":              models.OrderStatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
		})
	})
	if err != nil {
		if isSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cancel order: %v", ErrPersistence, err)
	}

	s.recordTransition(ctx, order, oldStatus, models.OrderStatusCancelled, requestingUser, reason)
	return order, nil
}

// recordTransition writes the history row and notifies the customer. Both
// are best-effort; a failure lands in the log with the ids needed to
// reconcile, never in the caller's error.
func (s *OrderService) recordTransition(ctx context.Context, order *models.Order, oldStatus, newStatus string, actor uint, notes string) {
	if err := s.Repo.InsertStatusEvent(ctx, &models.OrderStatusEvent{
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: actor,
		Notes:     notes,
	}); err != nil {
		logging.FromContext(ctx).Error("status history write failed",
			"order_id", order.ID,
			"old_status", oldStatus,
			"new_status", newStatus,
			"error", err,
		)
	}
	s.Notifier.OrderStatusChanged(ctx, order, newStatus)
}

func validPaymentStatus(status string) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusPaid,
		models.PaymentStatusFailed, models.PaymentStatusRefunded:
		return true
	}
	return false
}

// UpdatePaymentStatus sets the payment flag. Payment state is a closed
// enum but not a state machine; gateways report out of order.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint, status string) error {
	if !validPaymentStatus(status) {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}

	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%w: load order: %v", ErrPersistence, err)
	}
	if order == nil {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}

	if err := s.Repo.UpdateOrder(ctx, orderID, map[string]any{"payment_status": status}); err != nil {
		return fmt.Errorf("%w: update payment status: %v", ErrPersistence, err)
	}
	return nil
}

// StatusHistory lists the recorded transitions for one order, oldest
// first.
func (s *OrderService) StatusHistory(ctx context.Context, orderID uint) ([]models.OrderStatusEvent, error) {
	events, err := s.Repo.StatusEventsForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: status history: %v", ErrPersistence, err)
	}
	return events, nil
}
