package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/notify"
	"github.com/casaphe/coffee_shop/internal/repo"
)

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Cart    *CartService
	Voucher *VoucherService
	Loyalty *LoyaltyService
	Orders  *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// One in-memory database per test; every session must share the single
	// connection or they would each see their own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	r := repo.NewGormRepo(db)
	cart := &CartService{Repo: r}
	loyalty := &LoyaltyService{Repo: r}

	env := &testEnv{
		DB:      db,
		Repo:    r,
		Cart:    cart,
		Voucher: &VoucherService{Repo: r},
		Loyalty: loyalty,
		Orders: &OrderService{
			Repo:     r,
			Cart:     cart,
			Loyalty:  loyalty,
			Notifier: &notify.Notifier{Repo: r},
		},
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return env
}

func (env *testEnv) seedUser(t *testing.T, email string) uint {
	t.Helper()
	user := models.User{Email: email, FullName: "Test User", MembershipTier: models.TierBronze}
	require.NoError(t, env.DB.Create(&user).Error)
	return user.ID
}

func (env *testEnv) seedProduct(t *testing.T, name string, basePrice int64) uint {
	t.Helper()
	product := models.Product{Name: name, BasePrice: basePrice, IsAvailable: true}
	require.NoError(t, env.DB.Create(&product).Error)
	return product.ID
}

func (env *testEnv) seedTopping(t *testing.T, name string, price int64) uint {
	t.Helper()
	topping := models.Topping{Name: name, Price: price, IsAvailable: true}
	require.NoError(t, env.DB.Create(&topping).Error)
	return topping.ID
}

func (env *testEnv) seedVoucher(t *testing.T, v models.Voucher) models.Voucher {
	t.Helper()
	if v.StartsAt == nil {
		past := time.Now().Add(-time.Hour)
		v.StartsAt = &past
	}
	if v.EndsAt == nil {
		future := time.Now().Add(24 * time.Hour)
		v.EndsAt = &future
	}
	require.NoError(t, env.DB.Create(&v).Error)
	return v
}
