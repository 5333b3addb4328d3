package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/jwtmiddleware"
	"github.com/casaphe/coffee_shop/internal/service"
	"github.com/casaphe/coffee_shop/internal/transport"
	"github.com/casaphe/coffee_shop/internal/util"
)

type LoyaltyHTTP struct {
	Svc *service.LoyaltyService
}

func (h *LoyaltyHTTP) GetAccount(c echo.Context) error {
	ctx := c.Request().Context()
	account, err := h.Svc.Account(ctx, jwtmiddleware.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *LoyaltyHTTP) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Page(page, size)

	history, err := h.Svc.History(ctx, jwtmiddleware.UserID(c), limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, history)
}

// RedeemPoints debits the caller's own balance. What the points buy is the
// storefront's business, not the ledger's.
func (h *LoyaltyHTTP) RedeemPoints(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	var req transport.RedeemPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Debit(ctx, userID, req.Points, req.Description); err != nil {
		return httpError(err)
	}

	account, err := h.Svc.Account(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

// AdjustPoints corrects any user's balance by a signed delta. Staff only.
func (h *LoyaltyHTTP) AdjustPoints(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.AdjustPointsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Adjust(ctx, req.UserID, req.Points, req.Description); err != nil {
		return httpError(err)
	}

	account, err := h.Svc.Account(ctx, req.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}
