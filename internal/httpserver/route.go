package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casaphe/coffee_shop/internal/jwtmiddleware"
)

type Deps struct {
	JWTSecret []byte

	CartHandler         *CartHTTP
	VoucherHandler      *VoucherHTTP
	OrderHandler        *OrderHTTP
	LoyaltyHandler      *LoyaltyHTTP
	NotificationHandler *NotificationHTTP
	StoreHandler        *StoreHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1", jwtmiddleware.RequireUser(d.JWTSecret))

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddItem)
	cart.PATCH("/:id", d.CartHandler.UpdateLine)
	cart.DELETE("/:id", d.CartHandler.RemoveItem)
	cart.DELETE("", d.CartHandler.Clear)
	cart.GET("/count", d.CartHandler.Count)
	cart.POST("/reorder/:orderID", d.CartHandler.Reorder)

	vouchers := v1.Group("/vouchers")
	vouchers.GET("", d.VoucherHandler.ListVouchers)
	vouchers.POST("/validate", d.VoucherHandler.ValidateVoucher)

	orders := v1.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/track", d.OrderHandler.TrackOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	staff := orders.Group("", jwtmiddleware.RequireStaff)
	staff.PATCH("/:id/status", d.OrderHandler.UpdateStatus)
	staff.PATCH("/:id/payment", d.OrderHandler.UpdatePaymentStatus)
	staff.GET("/:id/history", d.OrderHandler.StatusHistory)

	loyalty := v1.Group("/loyalty")
	loyalty.GET("", d.LoyaltyHandler.GetAccount)
	loyalty.GET("/history", d.LoyaltyHandler.GetHistory)
	loyalty.POST("/redeem", d.LoyaltyHandler.RedeemPoints)
	loyalty.POST("/adjust", d.LoyaltyHandler.AdjustPoints, jwtmiddleware.RequireStaff)

	notifications := v1.Group("/notifications")
	notifications.GET("", d.NotificationHandler.List)
	notifications.GET("/unread", d.NotificationHandler.UnreadCount)
	notifications.POST("/:id/read", d.NotificationHandler.MarkRead)
	notifications.POST("/read", d.NotificationHandler.MarkAllRead)

	v1.GET("/stores", d.StoreHandler.ListStores)
}
