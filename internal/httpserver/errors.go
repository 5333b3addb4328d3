// Package httpserver is the thin HTTP face of the commerce engine. Handlers
// bind JSON, call one service method and translate sentinel errors; no
// business rule lives here.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/service"
)

// httpError maps the engine's sentinels onto status codes. ErrPersistence
// turns into 503 because the whole call is safe to retry.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInsufficientBalance):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPersistence):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
