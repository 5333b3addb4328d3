package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/jwtmiddleware"
	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/service"
	"github.com/casaphe/coffee_shop/internal/transport"
	"github.com/casaphe/coffee_shop/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")
	userID := jwtmiddleware.UserID(c)

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateFromCart(ctx, userID, service.CreateOrderInput{
		OrderType:       req.OrderType,
		PaymentMethod:   req.PaymentMethod,
		StoreID:         req.StoreID,
		DeliveryAddress: req.DeliveryAddress,
		TableNumber:     req.TableNumber,
		Notes:           req.Notes,
		VoucherCode:     req.VoucherCode,
	})
	if err != nil {
		l.Warn("create_order rejected", "order_type", req.OrderType, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Page(page, size)

	orders, err := h.Svc.ForUser(ctx, userID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.Svc.GetForUser(ctx, orderID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) TrackOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tracking, err := h.Svc.Track(ctx, orderID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tracking)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")
	userID := jwtmiddleware.UserID(c)

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req transport.CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Cancel(ctx, orderID, userID, req.Reason)
	if err != nil {
		l.Warn("cancel rejected", "order_id", orderID, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus is the staff-side lifecycle driver.
func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")
	actor := jwtmiddleware.UserID(c)

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.TransitionStatus(ctx, orderID, req.Status, actor, req.Notes)
	if err != nil {
		l.Warn("transition rejected", "order_id", orderID, "status", req.Status, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdatePaymentStatus(ctx, orderID, req.Status); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// StatusHistory lists the recorded transitions, staff only.
func (h *OrderHTTP) StatusHistory(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	events, err := h.Svc.StatusHistory(ctx, orderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}
