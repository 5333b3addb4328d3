// Package pricing computes unit prices for customized drinks and the
// delivery fee schedule. It owns no state; catalog data arrives through the
// Catalog interface so callers decide where products live.
package pricing

import (
	"context"

	"github.com/casaphe/coffee_shop/internal/models"
)

// Catalog is the read surface pricing needs. ProductByID returns (nil, nil)
// for an unknown product; errors are reserved for the store being
// unreachable.
type Catalog interface {
	ProductByID(ctx context.Context, id uint) (*models.Product, error)
	SizesForProduct(ctx context.Context, productID uint) ([]models.ProductSize, error)
	ToppingsByIDs(ctx context.Context, ids []uint) ([]models.Topping, error)
}

// Quote is the price breakdown for one unit of a customized drink.
type Quote struct {
	BasePrice      int64 `json:"base_price"`
	SizeAdjustment int64 `json:"size_adjustment"`
	ToppingCost    int64 `json:"topping_cost"`
	Total          int64 `json:"total"`
}

// IsZero reports whether the quote carries no price at all, which is how an
// unknown product quotes.
func (q Quote) IsZero() bool { return q == Quote{} }

// Products without their own size rows use this schedule.
var defaultSizeAdjustments = map[string]int64{
	models.SizeS: -5000,
	models.SizeM: 0,
	models.SizeL: 10000,
}

type Calculator struct {
	catalog Catalog
}

func NewCalculator(catalog Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Quote prices one unit: base price plus size adjustment plus the sum of
// topping prices. An unknown product quotes zero rather than erroring, so a
// stale cart line can never invent a price. Unknown topping ids are ignored.
func (c *Calculator) Quote(ctx context.Context, productID uint, size string, toppings models.ToppingSet) (Quote, error) {
	product, err := c.catalog.ProductByID(ctx, productID)
	if err != nil {
		return Quote{}, err
	}
	if product == nil {
		return Quote{}, nil
	}
	return c.QuoteFor(ctx, product, size, toppings)
}

// QuoteFor is Quote for a product the caller already loaded.
func (c *Calculator) QuoteFor(ctx context.Context, product *models.Product, size string, toppings models.ToppingSet) (Quote, error) {
	adj, err := c.sizeAdjustment(ctx, product.ID, size)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{BasePrice: product.BasePrice, SizeAdjustment: adj}

	if ids := toppings.Normalize(); len(ids) > 0 {
		found, err := c.catalog.ToppingsByIDs(ctx, ids)
		if err != nil {
			return Quote{}, err
		}
		for _, t := range found {
			q.ToppingCost += t.Price
		}
	}

	q.Total = q.BasePrice + q.SizeAdjustment + q.ToppingCost
	return q, nil
}

func (c *Calculator) sizeAdjustment(ctx context.Context, productID uint, size string) (int64, error) {
	sizes, err := c.catalog.SizesForProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if len(sizes) == 0 {
		return defaultSizeAdjustments[size], nil
	}
	for _, s := range sizes {
		if s.Size == size {
			return s.PriceAdjustment, nil
		}
	}
	return 0, nil
}
