package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casaphe/coffee_shop/internal/models"
	"github.com/casaphe/coffee_shop/internal/repo"
)

// Rejection reasons surfaced to the caller. Stable strings: the UI shows
// them verbatim.
const (
	ReasonVoucherNotFound   = "voucher not found"
	ReasonVoucherInactive   = "voucher is not active"
	ReasonVoucherNotStarted = "voucher is not active yet"
	ReasonVoucherExpired    = "voucher has expired"
	ReasonBelowMinimum      = "order subtotal is below the voucher minimum"
	ReasonUsageLimitReached = "voucher has been fully redeemed"
	ReasonUserLimitReached  = "voucher already used the maximum number of times"
)

type VoucherService struct {
	Repo *repo.GormRepo
}

// VoucherValidation is the outcome of checking one code against one
// subtotal. Reason is empty when OK.
type VoucherValidation struct {
	OK       bool            `json:"ok"`
	Reason   string          `json:"reason,omitempty"`
	Voucher  *models.Voucher `json:"voucher,omitempty"`
	Discount int64           `json:"discount"`
}

// NormalizeCode uppercases a voucher code for lookup; codes are stored
// uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate runs the redemption checks in order, short-circuiting on the
// first failure: the code exists, the voucher is active and inside its
// window, the subtotal clears the minimum, and neither the global nor the
// per-user cap is exhausted.
func (s *VoucherService) Validate(ctx context.Context, userID uint, code string, subtotal int64) (*VoucherValidation, error) {
	v, err := s.Repo.VoucherByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("%w: load voucher: %v", ErrPersistence, err)
	}
	if v == nil {
		return &VoucherValidation{Reason: ReasonVoucherNotFound}, nil
	}

	var timesUsed int
	usage, err := s.Repo.VoucherUsage(ctx, userID, v.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: load voucher usage: %v", ErrPersistence, err)
	}
	if usage != nil {
		timesUsed = usage.TimesUsed
	}

	if reason := voucherReason(v, timesUsed, subtotal, time.Now()); reason != "" {
		return &VoucherValidation{Reason: reason, Voucher: v}, nil
	}
	return &VoucherValidation{OK: true, Voucher: v, Discount: ComputeDiscount(subtotal, v)}, nil
}

// voucherReason is the pure redemption check shared by Validate and the
// order materializer. Empty means the voucher is usable. A zero cap means
// "no limit".
func voucherReason(v *models.Voucher, timesUsed int, subtotal int64, now time.Time) string {
	if !v.IsActive {
		return ReasonVoucherInactive
	}
	if v.StartsAt != nil && now.Before(*v.StartsAt) {
		return ReasonVoucherNotStarted
	}
	if v.EndsAt != nil && now.After(*v.EndsAt) {
		return ReasonVoucherExpired
	}
	if subtotal < v.MinOrderAmount {
		return ReasonBelowMinimum
	}
	if v.UsageLimit > 0 && v.CurrentUsage >= v.UsageLimit {
		return ReasonUsageLimitReached
	}
	if v.UsagePerUser > 0 && timesUsed >= v.UsagePerUser {
		return ReasonUserLimitReached
	}
	return ""
}

// ComputeDiscount turns a voucher into an amount off the subtotal.
// Percentage discounts respect MaxDiscountAmount when set; every result is
// clamped to the subtotal so the payable total can never go negative.
func ComputeDiscount(subtotal int64, v *models.Voucher) int64 {
	var discount int64
	switch v.DiscountType {
	case models.DiscountTypePercentage:
		discount = int64(float64(subtotal) * v.DiscountValue / 100)
		if v.MaxDiscountAmount > 0 && discount > v.MaxDiscountAmount {
			discount = v.MaxDiscountAmount
		}
	case models.DiscountTypeFixed:
		discount = int64(v.DiscountValue)
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// AvailableForUser lists active, in-window vouchers the user can still
// redeem.
func (s *VoucherService) AvailableForUser(ctx context.Context, userID uint) ([]models.Voucher, error) {
	now := time.Now()
	vouchers, err := s.Repo.ActiveVouchers(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%w: list vouchers: %v", ErrPersistence, err)
	}

	ids := make([]uint, 0, len(vouchers))
	for _, v := range vouchers {
		ids = append(ids, v.ID)
	}
	used, err := s.Repo.VoucherUsagesForUser(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load voucher usage: %v", ErrPersistence, err)
	}

	available := make([]models.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if v.UsageLimit > 0 && v.CurrentUsage >= v.UsageLimit {
			continue
		}
		if v.UsagePerUser > 0 && used[v.ID] >= v.UsagePerUser {
			continue
		}
		available = append(available, v)
	}
	return available, nil
}
