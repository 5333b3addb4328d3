package service

import (
	"context"
	"fmt"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// DefaultPointsRate is how many points one unit of currency earns.
const DefaultPointsRate = 0.01

// Tier thresholds in points.
const (
	silverThreshold = 1000
	goldThreshold   = 5000
)

type LoyaltyService struct {
	Repo *repo.GormRepo

	// Rate overrides DefaultPointsRate when positive.
	Rate float64
}

// LoyaltyAccount is the balance and tier snapshot for one user.
type LoyaltyAccount struct {
	UserID uint   `json:"user_id"`
	Points int64  `json:"points"`
	Tier   string `json:"tier"`
}

// TierForPoints derives the membership tier from a balance. The stored tier
// column is only a cache of this function.
func TierForPoints(points int64) string {
	switch {
	case points >= goldThreshold:
		return models.TierGold
	case points >= silverThreshold:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// PointsEarned converts an order total into earned points, rounded down.
func (s *LoyaltyService) PointsEarned(total int64) int64 {
	rate := s.Rate
	if rate <= 0 {
		rate = DefaultPointsRate
	}
	return int64(float64(total) * rate)
}

// Credit appends an earn entry and raises the balance. The user row stays
// locked for the whole transaction so concurrent ledger writes serialize.
func (s *LoyaltyService) Credit(ctx context.Context, userID uint, points int64, description string, orderID *uint) error {
	if points <= 0 {
		return fmt.Errorf("%w: credit points must be positive", ErrValidation)
	}
	return s.apply(ctx, userID, points, models.LoyaltyKindEarn, description, orderID)
}

// Debit appends a redeem entry with a negative delta. A debit larger than
// the balance fails; the balance never goes negative.
func (s *LoyaltyService) Debit(ctx context.Context, userID uint, points int64, description string) error {
	if points <= 0 {
		return fmt.Errorf("%w: debit points must be positive", ErrValidation)
	}
	return s.apply(ctx, userID, -points, models.LoyaltyKindRedeem, description, nil)
}

// Adjust lets back-office staff correct a balance in either direction.
func (s *LoyaltyService) Adjust(ctx context.Context, userID uint, delta int64, description string) error {
	if delta == 0 {
		return fmt.Errorf("%w: adjustment delta must not be zero", ErrValidation)
	}
	return s.apply(ctx, userID, delta, models.LoyaltyKindAdjust, description, nil)
}

func (s *LoyaltyService) apply(ctx context.Context, userID uint, delta int64, kind, description string, orderID *uint) error {
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.UserByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		balance := user.LoyaltyPoints + delta
		if balance < 0 {
			return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientBalance, user.LoyaltyPoints, -delta)
		}

		if err := tx.InsertLoyaltyTransaction(ctx, &models.LoyaltyTransaction{
			UserID:      userID,
			Points:      delta,
			Kind:        kind,
			Description: description,
			OrderID:     orderID,
		}); err != nil {
			return err
		}

		tier := ""
		if newTier := TierForPoints(balance); newTier != user.MembershipTier {
			tier = newTier
		}
		return tx.UpdateUserLoyalty(ctx, userID, balance, tier)
	})
	if err == nil || isSentinel(err) {
		return err
	}
	return fmt.Errorf("%w: loyalty %s: %v", ErrPersistence, kind, err)
}

func (s *LoyaltyService) Account(ctx context.Context, userID uint) (*LoyaltyAccount, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", ErrPersistence, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return &LoyaltyAccount{UserID: user.ID, Points: user.LoyaltyPoints, Tier: user.MembershipTier}, nil
}

func (s *LoyaltyService) History(ctx context.Context, userID uint, limit, offset int) ([]models.LoyaltyTransaction, error) {
	txns, err := s.Repo.LoyaltyHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: loyalty history: %v", ErrPersistence, err)
	}
	return txns, nil
}
