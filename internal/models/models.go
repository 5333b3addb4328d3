package models

import (
	"time"
)

// Drink sizes. Products may override the default price schedule per size.
const (
	SizeS = "S"
	SizeM = "M"
	SizeL = "L"
)

const (
	TemperatureHot  = "hot"
	TemperatureCold = "cold"
)

const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"
	OrderTypeDineIn   = "dine_in"
)

// Order fulfillment statuses. Transitions are enforced by the service layer.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusPreparing  = "preparing"
	OrderStatusReady      = "ready"
	OrderStatusDelivering = "delivering"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	PaymentMethodCash      = "cash"
	PaymentMethodMomo      = "momo"
	PaymentMethodShopeePay = "shopeepay"
	PaymentMethodZaloPay   = "zalopay"
	PaymentMethodApplePay  = "applepay"
	PaymentMethodGooglePay = "googlepay"
	PaymentMethodCard      = "card"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

const (
	TierBronze = "Bronze"
	TierSilver = "Silver"
	TierGold   = "Gold"
)

const (
	LoyaltyKindEarn   = "earn"
	LoyaltyKindRedeem = "redeem"
	LoyaltyKindAdjust = "admin_adjustment"
)

const (
	NotificationOrderCreated = "order_created"
	NotificationOrderStatus  = "order_status"
)

// Prices are VND, which has no minor unit, so int64 throughout.
type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	NameEN      string `json:"name_en"`
	BasePrice   int64  `gorm:"not null"                 json:"base_price"`
	IsAvailable bool   `gorm:"default:true"             json:"is_available"`
}

type ProductSize struct {
	ID              uint   `gorm:"primaryKey"         json:"id"`
	ProductID       uint   `gorm:"index;not null"     json:"product_id"`
	Size            string `gorm:"not null;size:1"    json:"size"`
	PriceAdjustment int64  `gorm:"not null;default:0" json:"price_adjustment"`
}

type Topping struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Price       int64  `gorm:"not null"                 json:"price"`
	IsAvailable bool   `gorm:"default:true"             json:"is_available"`
}

type Store struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	Address  string `gorm:"not null"                 json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"default:true"             json:"is_active"`
}

type User struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string `gorm:"unique;not null"          json:"email"`
	FullName       string `json:"full_name"`
	LoyaltyPoints  int64  `gorm:"not null;default:0"       json:"loyalty_points"`
	MembershipTier string `gorm:"not null;default:Bronze"  json:"membership_tier"`
}

// CartLine is one customized drink in a user's cart. Lines with the same
// customization tuple merge by quantity instead of duplicating; the
// composite unique index over the tuple backstops that invariant against
// concurrent first adds. Toppings participates because its column text is
// canonical, so text equality is set equality.
// SugarLevel and IceLevel carry no column default: 0 is a real value
// ("no sugar"), not an absence.
type CartLine struct {
	ID          uint       `gorm:"primaryKey"                                    json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_cart_identity"        json:"user_id"`
	ProductID   uint       `gorm:"not null;uniqueIndex:idx_cart_identity"        json:"product_id"`
	Size        string     `gorm:"not null;size:1;uniqueIndex:idx_cart_identity" json:"size"`
	Quantity    int        `gorm:"not null;check:quantity>0"                     json:"quantity"`
	SugarLevel  int        `gorm:"not null;uniqueIndex:idx_cart_identity"        json:"sugar_level"`
	IceLevel    int        `gorm:"not null;uniqueIndex:idx_cart_identity"        json:"ice_level"`
	Temperature string     `gorm:"not null;uniqueIndex:idx_cart_identity"        json:"temperature"`
	Toppings    ToppingSet `gorm:"type:text;uniqueIndex:idx_cart_identity"       json:"toppings"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Voucher struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string     `gorm:"unique;not null"          json:"code"`
	Description       string     `json:"description"`
	DiscountType      string     `gorm:"not null"                 json:"discount_type"`
	DiscountValue     float64    `gorm:"not null"                 json:"discount_value"`
	MinOrderAmount    int64      `gorm:"not null;default:0"       json:"min_order_amount"`
	MaxDiscountAmount int64      `gorm:"not null;default:0"       json:"max_discount_amount"`
	UsageLimit        int        `gorm:"not null;default:0"       json:"usage_limit"`
	UsagePerUser      int        `gorm:"not null;default:1"       json:"usage_per_user"`
	CurrentUsage      int        `gorm:"not null;default:0"       json:"current_usage"`
	StartsAt          *time.Time `json:"starts_at"`
	EndsAt            *time.Time `json:"ends_at"`
	IsActive          bool       `gorm:"default:true"             json:"is_active"`
}

// VoucherUsage counts redemptions per user. Rows are never decremented,
// including when the order is later cancelled.
type VoucherUsage struct {
	ID         uint      `gorm:"primaryKey"                            json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_voucher_user" json:"user_id"`
	VoucherID  uint      `gorm:"not null;uniqueIndex:idx_voucher_user" json:"voucher_id"`
	TimesUsed  int       `gorm:"not null;default:0"                    json:"times_used"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Order is the immutable receipt materialized from a cart. Only status,
// payment status, cancellation fields and timestamps change after insert.
type Order struct {
	ID                 uint        `gorm:"primaryKey"               json:"id"`
	UserID             uint        `gorm:"index;not null"           json:"user_id"`
	OrderNumber        string      `gorm:"unique;not null"          json:"order_number"`
	OrderType          string      `gorm:"not null"                 json:"order_type"`
	StoreID            *uint       `json:"store_id"`
	DeliveryAddress    string      `json:"delivery_address"`
	TableNumber        string      `json:"table_number"`
	Notes              string      `json:"notes"`
	Subtotal           int64       `gorm:"not null"                 json:"subtotal"`
	DiscountAmount     int64       `gorm:"not null;default:0"       json:"discount_amount"`
	DeliveryFee        int64       `gorm:"not null;default:0"       json:"delivery_fee"`
	Total              int64       `gorm:"not null"                 json:"total"`
	VoucherCode        string      `json:"voucher_code"`
	PaymentMethod      string      `gorm:"not null"                 json:"payment_method"`
	PaymentStatus      string      `gorm:"not null;default:pending" json:"payment_status"`
	Status             string      `gorm:"not null;default:pending" json:"status"`
	EstimatedReadyTime time.Time   `json:"estimated_ready_time"`
	CancellationReason string      `json:"cancellation_reason"`
	CreatedAt          time.Time   `json:"created_at"`
	CompletedAt        *time.Time  `json:"completed_at"`
	CancelledAt        *time.Time  `json:"cancelled_at"`
	Lines              []OrderLine `gorm:"foreignKey:OrderID"       json:"lines,omitempty"`
}

// OrderLine freezes a cart line at materialization time. Prices here never
// change even if the catalog does.
type OrderLine struct {
	ID          uint       `gorm:"primaryKey"         json:"id"`
	OrderID     uint       `gorm:"index;not null"     json:"order_id"`
	ProductID   uint       `gorm:"not null"           json:"product_id"`
	ProductName string     `gorm:"not null"           json:"product_name"`
	Size        string     `gorm:"not null;size:1"    json:"size"`
	Quantity    int        `gorm:"not null"           json:"quantity"`
	UnitPrice   int64      `gorm:"not null"           json:"unit_price"`
	SugarLevel  int        `gorm:"not null"           json:"sugar_level"`
	IceLevel    int        `gorm:"not null"           json:"ice_level"`
	Temperature string     `gorm:"not null"           json:"temperature"`
	Toppings    ToppingSet `gorm:"type:text"          json:"toppings"`
	ToppingCost int64      `gorm:"not null;default:0" json:"topping_cost"`
	Subtotal    int64      `gorm:"not null"           json:"subtotal"`
}

// OrderStatusEvent is the append-only history of lifecycle transitions.
type OrderStatusEvent struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `gorm:"not null"       json:"new_status"`
	ChangedBy uint      `json:"changed_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// LoyaltyTransaction is the append-only points ledger. The user's
// LoyaltyPoints column always equals the sum of their deltas.
type LoyaltyTransaction struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Points      int64     `gorm:"not null"       json:"points"`
	Kind        string    `gorm:"not null"       json:"kind"`
	Description string    `json:"description"`
	OrderID     *uint     `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"not null"       json:"title"`
	Message   string    `json:"message"`
	Type      string    `gorm:"not null"       json:"type"`
	OrderID   *uint     `json:"order_id"`
	IsRead    bool      `gorm:"default:false"  json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every persisted model for AutoMigrate.
func All() []any {
	return []any{
		&Product{}, &ProductSize{}, &Topping{}, &Store{}, &User{},
		&CartLine{}, &Voucher{}, &VoucherUsage{},
		&Order{}, &OrderLine{}, &OrderStatusEvent{},
		&LoyaltyTransaction{}, &Notification{},
	}
}
