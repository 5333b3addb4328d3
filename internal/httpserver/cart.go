package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/jwtmiddleware"
	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/service"
	"github.com/casaphe/coffee_shop/internal/transport"
)

type CartHTTP struct {
	Svc    *service.CartService
	Orders *service.OrderService
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	summary, err := h.Svc.Summary(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")
	userID := jwtmiddleware.UserID(c)

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	line, err := h.Svc.AddItem(ctx, userID, service.AddItemInput{
		ProductID:   req.ProductID,
		Size:        req.Size,
		Quantity:    req.Quantity,
		SugarLevel:  req.SugarLevel,
		IceLevel:    req.IceLevel,
		Temperature: req.Temperature,
		Toppings:    models.ToppingSet(req.Toppings),
	})
	if err != nil {
		l.Warn("add_item rejected", "product_id", req.ProductID, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, line)
}

// UpdateLine applies a partial edit. A quantity of zero or less removes the
// line, mirroring the service contract.
func (h *CartHTTP) UpdateLine(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	lineID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateCartLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	patch := service.CartLinePatch{
		Size:        req.Size,
		Quantity:    req.Quantity,
		SugarLevel:  req.SugarLevel,
		IceLevel:    req.IceLevel,
		Temperature: req.Temperature,
	}
	if req.Toppings != nil {
		set := models.ToppingSet(*req.Toppings)
		patch.Toppings = &set
	}

	line, err := h.Svc.UpdateLine(ctx, lineID, userID, patch)
	if err != nil {
		return httpError(err)
	}
	if line == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	lineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveItem(ctx, lineID, userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Svc.Clear(ctx, jwtmiddleware.UserID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	count, err := h.Svc.Count(ctx, jwtmiddleware.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// Reorder copies a past order's lines back into the cart.
func (h *CartHTTP) Reorder(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	orderID, err := pathID(c, "orderID")
	if err != nil {
		return err
	}
	result, err := h.Orders.Reorder(ctx, orderID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
