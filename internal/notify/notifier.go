// Package notify delivers user-facing order notifications: a row the app
// can list and an event on the order topic. Both writes are best-effort by
// contract; a failure is logged with enough fields to reconcile later and
// never propagates into the caller's transaction.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/mykafka"
	"github.com/casaphe/coffee_shop/internal/repo"
)

type Notifier struct {
	Repo *repo.GormRepo

	// Producer may be nil when no broker is configured; events are then
	// skipped and only the notification row is written.
	Producer *mykafka.Producer
	Topic    string
}

// OrderEvent is the envelope published to the order topic.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	UserID      uint      `json:"user_id"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

var statusMessages = map[string]string{
	models.OrderStatusConfirmed:  "Your order has been confirmed",
	models.OrderStatusPreparing:  "Your order is being prepared",
	models.OrderStatusReady:      "Your order is ready",
	models.OrderStatusDelivering: "Your order is out for delivery",
	models.OrderStatusCompleted:  "Your order is complete",
	models.OrderStatusCancelled:  "Your order has been cancelled",
}

// OrderCreated announces a freshly materialized order.
func (n *Notifier) OrderCreated(ctx context.Context, order *models.Order) {
	msg := fmt.Sprintf("Order #%s has been placed", order.OrderNumber)
	n.deliver(ctx, order, models.NotificationOrderCreated, "Order placed", msg)
}

// OrderStatusChanged announces a lifecycle transition.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order, newStatus string) {
	msg, ok := statusMessages[newStatus]
	if !ok {
		msg = fmt.Sprintf("Order status: %s", newStatus)
	}
	title := fmt.Sprintf("Order #%s update", order.OrderNumber)
	n.deliver(ctx, order, models.NotificationOrderStatus, title, msg)
}

func (n *Notifier) deliver(ctx context.Context, order *models.Order, eventType, title, message string) {
	l := logging.FromContext(ctx).With(
		"component", "notify",
		"order_id", order.ID,
		"user_id", order.UserID,
		"event_type", eventType,
	)

	orderID := order.ID
	err := n.Repo.InsertNotification(ctx, &models.Notification{
		UserID:  order.UserID,
		Title:   title,
		Message: message,
		Type:    eventType,
		OrderID: &orderID,
	})
	if err != nil {
		l.Error("notification write failed", "error", err)
	}

	if n.Producer == nil {
		return
	}

	event := OrderEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		UserID:      order.UserID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Message:     message,
		At:          time.Now().UTC(),
	}
	key := strconv.FormatUint(uint64(order.ID), 10)
	if err := n.Producer.PublishEvent(ctx, n.Topic, key, event); err != nil {
		l.Error("order event publish failed", "error", err, "event_id", event.EventID)
	}
}
