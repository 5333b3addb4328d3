package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/notify"
	"github.com/casaphe/coffee_shop/internal/repo"
	"github.com/casaphe/coffee_shop/internal/service"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Cart    *CartHTTP
	Voucher *VoucherHTTP
	Order   *OrderHTTP
	Loyalty *LoyaltyHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	r := repo.NewGormRepo(db)
	cartSvc := &service.CartService{Repo: r}
	loyaltySvc := &service.LoyaltyService{Repo: r}
	orderSvc := &service.OrderService{
		Repo:     r,
		Cart:     cartSvc,
		Loyalty:  loyaltySvc,
		Notifier: &notify.Notifier{Repo: r},
	}

	env := &testEnv{
		T:       t,
		E:       echo.New(),
		DB:      db,
		Cart:    &CartHTTP{Svc: cartSvc, Orders: orderSvc},
		Voucher: &VoucherHTTP{Svc: &service.VoucherService{Repo: r}},
		Order:   &OrderHTTP{Svc: orderSvc},
		Loyalty: &LoyaltyHTTP{Svc: loyaltySvc},
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return env
}

func (env *testEnv) seed(t *testing.T) (userID, storeID, productID uint) {
	t.Helper()
	user := models.User{Email: "handler@test.local", MembershipTier: models.TierBronze}
	require.NoError(t, env.DB.Create(&user).Error)
	store := models.Store{Name: "Downtown", Address: "1 Main St", IsActive: true}
	require.NoError(t, env.DB.Create(&store).Error)
	product := models.Product{Name: "Latte", BasePrice: 50000, IsAvailable: true}
	require.NoError(t, env.DB.Create(&product).Error)
	return user.ID, store.ID, product.ID
}

// doJSONRequest builds an echo context with the caller already
// authenticated; middleware behavior is covered by the jwtmiddleware tests.
func (env *testEnv) doJSONRequest(method, path string, body any, userID uint) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.Set("user_id", userID)
	return rec, c
}

func addLatte(t *testing.T, env *testEnv, userID, productID uint, qty int) {
	t.Helper()
	body := map[string]any{
		"product_id":  productID,
		"size":        "M",
		"quantity":    qty,
		"sugar_level": 50,
		"ice_level":   50,
		"temperature": "cold",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart", body, userID)
	require.NoError(t, env.Cart.AddItem(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCartHTTP_AddAndGet(t *testing.T) {
	env := newTestEnv(t)
	userID, _, productID := env.seed(t)

	addLatte(t, env, userID, productID, 2)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/cart", nil, userID)
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary service.CartSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, int64(100000), summary.Subtotal)
	assert.Equal(t, 2, summary.ItemCount)
}

func TestCartHTTP_AddItem_ValidationMapsTo400(t *testing.T) {
	env := newTestEnv(t)
	userID, _, productID := env.seed(t)

	body := map[string]any{
		"product_id":  productID,
		"size":        "XXL",
		"quantity":    1,
		"temperature": "cold",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/cart", body, userID)
	err := env.Cart.AddItem(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestCartHTTP_UpdateLine_QuantityZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	userID, _, productID := env.seed(t)
	addLatte(t, env, userID, productID, 2)

	var line models.CartLine
	require.NoError(t, env.DB.Where("user_id = ?", userID).First(&line).Error)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/v1/cart/1", map[string]any{"quantity": 0}, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.UpdateLine(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartLine{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderHTTP_CreateOrder(t *testing.T) {
	env := newTestEnv(t)
	userID, storeID, productID := env.seed(t)
	addLatte(t, env, userID, productID, 1)

	body := map[string]any{
		"order_type":     "pickup",
		"payment_method": "cash",
		"store_id":       storeID,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body, userID)
	require.NoError(t, env.Order.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(50000), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 1)
}

func TestOrderHTTP_CreateOrder_EmptyCartMapsTo400(t *testing.T) {
	env := newTestEnv(t)
	userID, storeID, _ := env.seed(t)

	body := map[string]any{
		"order_type":     "pickup",
		"payment_method": "cash",
		"store_id":       storeID,
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body, userID)
	err := env.Order.CreateOrder(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestOrderHTTP_GetForeignOrderMapsTo404(t *testing.T) {
	env := newTestEnv(t)
	userID, storeID, productID := env.seed(t)
	addLatte(t, env, userID, productID, 1)

	body := map[string]any{
		"order_type":     "pickup",
		"payment_method": "cash",
		"store_id":       storeID,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body, userID)
	require.NoError(t, env.Order.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	stranger := models.User{Email: "stranger@test.local"}
	require.NoError(t, env.DB.Create(&stranger).Error)

	_, c = env.doJSONRequest(http.MethodGet, "/api/v1/orders/1", nil, stranger.ID)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.Order.GetOrder(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestOrderHTTP_UpdateStatus_InvalidTransitionMapsTo409(t *testing.T) {
	env := newTestEnv(t)
	userID, storeID, productID := env.seed(t)
	addLatte(t, env, userID, productID, 1)

	body := map[string]any{
		"order_type":     "pickup",
		"payment_method": "cash",
		"store_id":       storeID,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", body, userID)
	require.NoError(t, env.Order.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c = env.doJSONRequest(http.MethodPatch, "/api/v1/orders/1/status", map[string]string{"status": "ready"}, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := env.Order.UpdateStatus(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestLoyaltyHTTP_RedeemInsufficientMapsTo409(t *testing.T) {
	env := newTestEnv(t)
	userID, _, _ := env.seed(t)

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/loyalty/redeem", map[string]any{"points": 100, "description": "free drink"}, userID)
	err := env.Loyalty.RedeemPoints(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestLoyaltyHTTP_AdjustPoints(t *testing.T) {
	env := newTestEnv(t)
	userID, _, _ := env.seed(t)

	body := map[string]any{"user_id": userID, "points": 500, "description": "goodwill credit"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/loyalty/adjust", body, userID)
	require.NoError(t, env.Loyalty.AdjustPoints(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var account service.LoyaltyAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, int64(500), account.Points)

	var entry models.LoyaltyTransaction
	require.NoError(t, env.DB.Where("user_id = ?", userID).First(&entry).Error)
	assert.Equal(t, models.LoyaltyKindAdjust, entry.Kind)

	_, c = env.doJSONRequest(http.MethodPost, "/api/v1/loyalty/adjust", map[string]any{"user_id": userID, "points": 0}, userID)
	err := env.Loyalty.AdjustPoints(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestVoucherHTTP_Validate(t *testing.T) {
	env := newTestEnv(t)
	userID, _, _ := env.seed(t)

	require.NoError(t, env.DB.Create(&models.Voucher{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/vouchers/validate", map[string]any{"code": "save10", "subtotal": 55000}, userID)
	require.NoError(t, env.Voucher.ValidateVoucher(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var validation service.VoucherValidation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validation))
	assert.True(t, validation.OK)
	assert.Equal(t, int64(5500), validation.Discount)
}
