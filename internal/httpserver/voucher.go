package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/jwtmiddleware"
	"github.com/casaphe/coffee_shop/internal/service"
	"github.com/casaphe/coffee_shop/internal/transport"
)

type VoucherHTTP struct {
	Svc *service.VoucherService
}

// ValidateVoucher checks a code against a subtotal without redeeming it.
// Redemption only ever happens inside order creation.
func (h *VoucherHTTP) ValidateVoucher(c echo.Context) error {
	ctx := c.Request().Context()
	userID := jwtmiddleware.UserID(c)

	var req transport.ValidateVoucherRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	validation, err := h.Svc.Validate(ctx, userID, req.Code, req.Subtotal)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, validation)
}

func (h *VoucherHTTP) ListVouchers(c echo.Context) error {
	ctx := c.Request().Context()
	vouchers, err := h.Svc.AvailableForUser(ctx, jwtmiddleware.UserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, vouchers)
}
