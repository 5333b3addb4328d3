package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casaphe/coffee_shop/internal/models"
)

func latte(productID uint, qty int) AddItemInput {
	return AddItemInput{
		ProductID:   productID,
		Size:        models.SizeM,
		Quantity:    qty,
		SugarLevel:  50,
		IceLevel:    50,
		Temperature: models.TemperatureCold,
	}
}

func TestCartService_AddItem_MergesIdenticalCustomization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "merge@test.local")
	productID := env.seedProduct(t, "Latte", 50000)

	_, err := env.Cart.AddItem(ctx, userID, latte(productID, 2))
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, userID, latte(productID, 3))
	require.NoError(t, err)

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 5, summary.Lines[0].Quantity)
	assert.Equal(t, 5, summary.ItemCount)
}

func TestCartService_AddItem_ToppingOrderDoesNotSplitLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "toppings@test.local")
	productID := env.seedProduct(t, "Milk Tea", 40000)
	t1 := env.seedTopping(t, "Pearl", 5000)
	t2 := env.seedTopping(t, "Pudding", 7000)

	first := latte(productID, 1)
	first.Toppings = models.ToppingSet{t2, t1}
	second := latte(productID, 1)
	second.Toppings = models.ToppingSet{t1, t2, t1}

	_, err := env.Cart.AddItem(ctx, userID, first)
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, userID, second)
	require.NoError(t, err)

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.Lines[0].Quantity)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "invalid@test.local")
	productID := env.seedProduct(t, "Espresso", 30000)

	tests := []struct {
		name   string
		mutate func(*AddItemInput)
	}{
		{name: "zero quantity", mutate: func(in *AddItemInput) { in.Quantity = 0 }},
		{name: "over max quantity", mutate: func(in *AddItemInput) { in.Quantity = MaxLineQuantity + 1 }},
		{name: "bad size", mutate: func(in *AddItemInput) { in.Size = "XL" }},
		{name: "sugar over 100", mutate: func(in *AddItemInput) { in.SugarLevel = 101 }},
		{name: "negative ice", mutate: func(in *AddItemInput) { in.IceLevel = -1 }},
		{name: "bad temperature", mutate: func(in *AddItemInput) { in.Temperature = "lukewarm" }},
		{name: "unknown product", mutate: func(in *AddItemInput) { in.ProductID = 9999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := latte(productID, 1)
			tt.mutate(&in)

			_, err := env.Cart.AddItem(ctx, userID, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
}

func TestCartService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "zero@test.local")
	productID := env.seedProduct(t, "Mocha", 45000)

	line, err := env.Cart.AddItem(ctx, userID, latte(productID, 2))
	require.NoError(t, err)

	require.NoError(t, env.Cart.UpdateQuantity(ctx, line.ID, userID, 0))

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.Zero(t, summary.ItemCount)
}

func TestCartService_UpdateQuantity_ForeignLineIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@test.local")
	intruder := env.seedUser(t, "intruder@test.local")
	productID := env.seedProduct(t, "Americano", 35000)

	line, err := env.Cart.AddItem(ctx, owner, latte(productID, 1))
	require.NoError(t, err)

	err = env.Cart.UpdateQuantity(ctx, line.ID, intruder, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	summary, err := env.Cart.Summary(ctx, owner)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 1, summary.Lines[0].Quantity)
}

func TestCartService_UpdateLine_PatchDistinguishesUnsetFromZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "patch@test.local")
	productID := env.seedProduct(t, "Oolong", 38000)

	line, err := env.Cart.AddItem(ctx, userID, latte(productID, 1))
	require.NoError(t, err)

	zero := 0
	updated, err := env.Cart.UpdateLine(ctx, line.ID, userID, CartLinePatch{SugarLevel: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SugarLevel)
	assert.Equal(t, 50, updated.IceLevel, "unset field must stay untouched")

	size := models.SizeL
	updated, err = env.Cart.UpdateLine(ctx, line.ID, userID, CartLinePatch{Size: &size})
	require.NoError(t, err)
	assert.Equal(t, models.SizeL, updated.Size)
	assert.Equal(t, 0, updated.SugarLevel)
}

func TestCartService_Summary_PricesLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "summary@test.local")
	productID := env.seedProduct(t, "Latte", 50000)
	toppingID := env.seedTopping(t, "Espresso Shot", 5000)

	in := latte(productID, 2)
	in.Toppings = models.ToppingSet{toppingID}
	_, err := env.Cart.AddItem(ctx, userID, in)
	require.NoError(t, err)

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)

	// base 50000, size M +0, topping 5000
	assert.Equal(t, int64(55000), summary.Lines[0].UnitPrice)
	assert.Equal(t, int64(5000), summary.Lines[0].ToppingCost)
	assert.Equal(t, int64(110000), summary.Lines[0].LineSubtotal)
	assert.Equal(t, int64(110000), summary.Subtotal)
	assert.Equal(t, 2, summary.ItemCount)
}

func TestCartService_Summary_SkipsVanishedProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "vanished@test.local")
	productID := env.seedProduct(t, "Seasonal Special", 60000)

	_, err := env.Cart.AddItem(ctx, userID, latte(productID, 1))
	require.NoError(t, err)

	require.NoError(t, env.DB.Delete(&models.Product{}, productID).Error)

	summary, err := env.Cart.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.Zero(t, summary.Subtotal)
}

func TestCartService_AddItem_DuplicateIdentityRowsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "backstop@test.local")
	productID := env.seedProduct(t, "Latte", 50000)

	_, err := env.Cart.AddItem(ctx, userID, latte(productID, 1))
	require.NoError(t, err)

	// Two rows with the same customization tuple must be impossible at the
	// schema level, not just in the merge path: concurrent first adds can
	// both miss the update and reach the insert, and the loser has to hit
	// the unique index instead of landing a second row.
	dup := models.CartLine{
		UserID:      userID,
		ProductID:   productID,
		Size:        models.SizeM,
		Quantity:    1,
		SugarLevel:  50,
		IceLevel:    50,
		Temperature: models.TemperatureCold,
	}
	require.ErrorIs(t, env.DB.Create(&dup).Error, gorm.ErrDuplicatedKey)

	// The repo merge still folds further adds into the one surviving row.
	more := models.CartLine{
		UserID:      userID,
		ProductID:   productID,
		Size:        models.SizeM,
		Quantity:    2,
		SugarLevel:  50,
		IceLevel:    50,
		Temperature: models.TemperatureCold,
	}
	require.NoError(t, env.Repo.AddCartLine(ctx, &more))
	assert.Equal(t, 3, more.Quantity)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartLine{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCartService_Clear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedUser(t, "clear@test.local")
	productID := env.seedProduct(t, "Cold Brew", 42000)

	_, err := env.Cart.AddItem(ctx, userID, latte(productID, 3))
	require.NoError(t, err)
	require.NoError(t, env.Cart.Clear(ctx, userID))

	count, err := env.Cart.Count(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
