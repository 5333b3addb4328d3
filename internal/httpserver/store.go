package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/service"
)

type StoreHTTP struct {
	Svc *service.StoreService
}

func (h *StoreHTTP) ListStores(c echo.Context) error {
	ctx := c.Request().Context()
	stores, err := h.Svc.ActiveStores(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stores)
}
