package service

import (
	"context"
	"fmt"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/pricing"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// MaxLineQuantity caps how many units one add or edit may carry.
const MaxLineQuantity = 100

type CartService struct {
	Repo *repo.GormRepo
}

type AddItemInput struct {
	ProductID   uint
	Size        string
	Quantity    int
	SugarLevel  int
	IceLevel    int
	Temperature string
	Toppings    models.ToppingSet
}

// CartLinePatch updates a line in place. Nil fields stay untouched, so a
// pointer to zero ("no sugar") is distinct from an unset field.
type CartLinePatch struct {
	Size        *string
	Quantity    *int
	SugarLevel  *int
	IceLevel    *int
	Temperature *string
	Toppings    *models.ToppingSet
}

// SummaryLine is a cart line enriched with its current unit price.
type SummaryLine struct {
	ID           uint              `json:"id"`
	ProductID    uint              `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Size         string            `json:"size"`
	Quantity     int               `json:"quantity"`
	SugarLevel   int               `json:"sugar_level"`
	IceLevel     int               `json:"ice_level"`
	Temperature  string            `json:"temperature"`
	Toppings     models.ToppingSet `json:"toppings"`
	UnitPrice    int64             `json:"unit_price"`
	ToppingCost  int64             `json:"topping_cost"`
	LineSubtotal int64             `json:"line_subtotal"`
}

type CartSummary struct {
	Lines     []SummaryLine `json:"lines"`
	Subtotal  int64         `json:"subtotal"`
	ItemCount int           `json:"item_count"`
}

func validSize(size string) bool {
	return size == models.SizeS || size == models.SizeM || size == models.SizeL
}

func validTemperature(temp string) bool {
	return temp == models.TemperatureHot || temp == models.TemperatureCold
}

func validateCustomization(size string, sugar, ice int, temp string) error {
	if !validSize(size) {
		return fmt.Errorf("%w: size must be S, M or L", ErrValidation)
	}
	if sugar < 0 || sugar > 100 {
		return fmt.Errorf("%w: sugar level must be between 0 and 100", ErrValidation)
	}
	if ice < 0 || ice > 100 {
		return fmt.Errorf("%w: ice level must be between 0 and 100", ErrValidation)
	}
	if !validTemperature(temp) {
		return fmt.Errorf("%w: temperature must be hot or cold", ErrValidation)
	}
	return nil
}

// AddItem validates the input, then merges into an existing line with the
// same customization tuple or inserts a new one.
func (s *CartService) AddItem(ctx context.Context, userID uint, in AddItemInput) (*models.CartLine, error) {
	if in.Quantity < 1 || in.Quantity > MaxLineQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxLineQuantity)
	}
	if err := validateCustomization(in.Size, in.SugarLevel, in.IceLevel, in.Temperature); err != nil {
		return nil, err
	}

	product, err := s.Repo.ProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: load product: %v", ErrPersistence, err)
	}
	if product == nil || !product.IsAvailable {
		return nil, fmt.Errorf("%w: product %d is not available", ErrValidation, in.ProductID)
	}

	line := &models.CartLine{
		UserID:      userID,
		ProductID:   in.ProductID,
		Size:        in.Size,
		Quantity:    in.Quantity,
		SugarLevel:  in.SugarLevel,
		IceLevel:    in.IceLevel,
		Temperature: in.Temperature,
		Toppings:    in.Toppings.Normalize(),
	}
	if err := s.Repo.AddCartLine(ctx, line); err != nil {
		return nil, fmt.Errorf("%w: add cart line: %v", ErrPersistence, err)
	}
	return line, nil
}

// UpdateQuantity overwrites a line's quantity. Zero or less removes the
// line, same as RemoveItem.
func (s *CartService) UpdateQuantity(ctx context.Context, lineID, userID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID, userID)
	}
	if quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxLineQuantity)
	}

	affected, err := s.Repo.UpdateCartLineQuantity(ctx, lineID, userID, quantity)
	if err != nil {
		return fmt.Errorf("%w: update quantity: %v", ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}
	return nil
}

// UpdateLine applies a partial edit to one of the user's lines. A quantity
// patched to zero or less removes the line.
func (s *CartService) UpdateLine(ctx context.Context, lineID, userID uint, patch CartLinePatch) (*models.CartLine, error) {
	line, err := s.Repo.CartLineByID(ctx, lineID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart line: %v", ErrPersistence, err)
	}
	if line == nil {
		return nil, fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}

	if patch.Quantity != nil && *patch.Quantity <= 0 {
		if err := s.RemoveItem(ctx, lineID, userID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if patch.Size != nil {
		line.Size = *patch.Size
	}
	if patch.Quantity != nil {
		if *patch.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxLineQuantity)
		}
		line.Quantity = *patch.Quantity
	}
	if patch.SugarLevel != nil {
		line.SugarLevel = *patch.SugarLevel
	}
	if patch.IceLevel != nil {
		line.IceLevel = *patch.IceLevel
	}
	if patch.Temperature != nil {
		line.Temperature = *patch.Temperature
	}
	if patch.Toppings != nil {
		line.Toppings = patch.Toppings.Normalize()
	}

	if err := validateCustomization(line.Size, line.SugarLevel, line.IceLevel, line.Temperature); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveCartLine(ctx, line); err != nil {
		return nil, fmt.Errorf("%w: save cart line: %v", ErrPersistence, err)
	}
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, lineID, userID uint) error {
	affected, err := s.Repo.DeleteCartLine(ctx, lineID, userID)
	if err != nil {
		return fmt.Errorf("%w: delete cart line: %v", ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: cart line %d", ErrNotFound, lineID)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("%w: clear cart: %v", ErrPersistence, err)
	}
	return nil
}

func (s *CartService) Summary(ctx context.Context, userID uint) (*CartSummary, error) {
	summary, err := summarizeCart(ctx, s.Repo, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: cart summary: %v", ErrPersistence, err)
	}
	return summary, nil
}

// Count is the sum of quantities across the user's lines.
func (s *CartService) Count(ctx context.Context, userID uint) (int, error) {
	count, err := s.Repo.CartQuantitySum(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: cart count: %v", ErrPersistence, err)
	}
	return count, nil
}

// summarizeCart prices every line against the given repo, which may be
// transaction-bound when the materializer calls it. Lines whose product no
// longer resolves to a price are left out, matching the join the cart view
// has always done.
func summarizeCart(ctx context.Context, r *repo.GormRepo, userID uint) (*CartSummary, error) {
	lines, err := r.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	calc := pricing.NewCalculator(r)
	summary := &CartSummary{Lines: make([]SummaryLine, 0, len(lines))}

	for _, line := range lines {
		product, err := r.ProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}

		quote, err := calc.QuoteFor(ctx, product, line.Size, line.Toppings)
		if err != nil {
			return nil, err
		}

		summary.Lines = append(summary.Lines, SummaryLine{
			ID:           line.ID,
			ProductID:    line.ProductID,
			ProductName:  product.Name,
			Size:         line.Size,
			Quantity:     line.Quantity,
			SugarLevel:   line.SugarLevel,
			IceLevel:     line.IceLevel,
			Temperature:  line.Temperature,
			Toppings:     line.Toppings,
			UnitPrice:    quote.Total,
			ToppingCost:  quote.ToppingCost,
			LineSubtotal: quote.Total * int64(line.Quantity),
		})
		summary.Subtotal += quote.Total * int64(line.Quantity)
		summary.ItemCount += line.Quantity
	}

	return summary, nil
}
