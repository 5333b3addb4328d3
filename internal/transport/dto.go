// Package transport defines the JSON bodies the HTTP layer accepts.
// Responses reuse the service layer's types directly.
package transport

type AddCartItemRequest struct {
	ProductID   uint   `json:"product_id"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
	SugarLevel  int    `json:"sugar_level"`
	IceLevel    int    `json:"ice_level"`
	Temperature string `json:"temperature"`
	Toppings    []uint `json:"toppings"`
}

// UpdateCartLineRequest is a partial edit. Absent fields stay nil and leave
// the line untouched; a present zero is a real zero.
type UpdateCartLineRequest struct {
	Size        *string `json:"size"`
	Quantity    *int    `json:"quantity"`
	SugarLevel  *int    `json:"sugar_level"`
	IceLevel    *int    `json:"ice_level"`
	Temperature *string `json:"temperature"`
	Toppings    *[]uint `json:"toppings"`
}

type CreateOrderRequest struct {
	OrderType       string `json:"order_type"`
	PaymentMethod   string `json:"payment_method"`
	StoreID         *uint  `json:"store_id"`
	DeliveryAddress string `json:"delivery_address"`
	TableNumber     string `json:"table_number"`
	Notes           string `json:"notes"`
	VoucherCode     string `json:"voucher_code"`
}

type ValidateVoucherRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type RedeemPointsRequest struct {
	Points      int64  `json:"points"`
	Description string `json:"description"`
}

// AdjustPointsRequest is a back-office balance correction. Points is a
// signed delta.
type AdjustPointsRequest struct {
	UserID      uint   `json:"user_id"`
	Points      int64  `json:"points"`
	Description string `json:"description"`
}
