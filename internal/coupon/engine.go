package coupon

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrCouponNotFound            = errors.New("invalid or inactive coupon")
	ErrCouponExpired             = errors.New("coupon expired")
	ErrCouponNotApplicable       = errors.New("coupon not applicable for this tournament")
	ErrCouponNotAllowedForUser   = errors.New("coupon not allowed for this user")
	ErrCouponNotAllowedForGameID = errors.New("coupon not allowed for this BGMI ID")
	ErrMinimumOrderNotMet        = errors.New("order amount below coupon minimum")
	ErrCouponUsageLimitReached   = errors.New("coupon usage limit reached")
	ErrPerUserUsageLimitReached  = errors.New("coupon usage limit reached for this user")
)

// Applicant is the slice of the acting user the engine needs.
type Applicant struct {
	UserID int
	BGMIID string
}

// Engine validates a coupon against a user, a tournament and a base amount
// and computes the discount. It never mutates usage counters; committing a
// usage is a separate repository operation performed once the associated
// payment succeeds.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (e *Engine) Apply(ctx context.Context, code string, applicant Applicant, tournamentID int, baseAmount int64) (*Result, error) {
	code = NormalizeCode(code)

	// No coupon is success, not failure.
	if code == "" {
		return &Result{DiscountAmount: 0, FinalAmount: baseAmount}, nil
	}

	cp, err := e.store.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, ErrCouponNotFound
	}

	if cp.ExpiresAt != nil && time.Now().After(*cp.ExpiresAt) {
		return nil, ErrCouponExpired
	}

	if len(cp.ApplicableTournamentIDs) > 0 && !containsInt64(cp.ApplicableTournamentIDs, int64(tournamentID)) {
		return nil, ErrCouponNotApplicable
	}

	if len(cp.AllowedUserIDs) > 0 && !containsInt64(cp.AllowedUserIDs, int64(applicant.UserID)) {
		return nil, ErrCouponNotAllowedForUser
	}

	if len(cp.AllowedBGMIIDs) > 0 {
		bgmiID := strings.TrimSpace(applicant.BGMIID)
		if bgmiID == "" || !containsString(cp.AllowedBGMIIDs, bgmiID) {
			return nil, ErrCouponNotAllowedForGameID
		}
	}

	if baseAmount < cp.MinOrderAmount {
		return nil, ErrMinimumOrderNotMet
	}

	if cp.MaxUses != nil && cp.UsedCount >= *cp.MaxUses {
		return nil, ErrCouponUsageLimitReached
	}

	if cp.MaxUsesPerUser != nil && *cp.MaxUsesPerUser > 0 {
		usedByUser, err := e.store.UsageCount(ctx, cp.ID, applicant.UserID)
		if err != nil {
			return nil, err
		}
		if usedByUser >= *cp.MaxUsesPerUser {
			return nil, ErrPerUserUsageLimitReached
		}
	}

	discount := Discount(cp, baseAmount)
	final := baseAmount - discount
	if final < 0 {
		final = 0
	}

	return &Result{
		Coupon:         cp,
		DiscountAmount: discount,
		FinalAmount:    final,
		Message:        "Coupon applied",
	}, nil
}

// Discount computes the rupee discount for a coupon against a base amount.
func Discount(cp *Coupon, baseAmount int64) int64 {
	switch cp.DiscountType {
	case DiscountFree:
		return baseAmount
	case DiscountPercent:
		pct := cp.DiscountValue
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return baseAmount * pct / 100
	case DiscountFlat:
		v := cp.DiscountValue
		if v < 0 {
			v = 0
		}
		if v > baseAmount {
			return baseAmount
		}
		return v
	}
	return 0
}

func containsInt64(xs []int64, x int64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
