package coupon

import (
	"time"

	"github.com/lib/pq"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
	DiscountFree    DiscountType = "free"
)

type Coupon struct {
	ID           int          `db:"id" json:"id"`
	Code         string       `db:"code" json:"code"`
	DiscountType DiscountType `db:"discount_type" json:"discount_type"`
	// percent => 1..100, flat => rupees, free => ignored
	DiscountValue int64 `db:"discount_value" json:"discount_value"`

	// Empty allow-lists mean "no restriction".
	ApplicableTournamentIDs pq.Int64Array  `db:"applicable_tournament_ids" json:"applicable_tournament_ids"`
	AllowedUserIDs          pq.Int64Array  `db:"allowed_user_ids" json:"allowed_user_ids"`
	AllowedBGMIIDs          pq.StringArray `db:"allowed_bgmi_ids" json:"allowed_bgmi_ids"`

	MaxUses        *int `db:"max_uses" json:"max_uses"` // nil => unlimited
	UsedCount      int  `db:"used_count" json:"used_count"`
	MaxUsesPerUser *int `db:"max_uses_per_user" json:"max_uses_per_user"`

	MinOrderAmount int64      `db:"min_order_amount" json:"min_order_amount"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at"`
	Active         bool       `db:"active" json:"active"`

	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Result of applying a coupon to a base amount. Coupon is nil when no code
// was supplied.
type Result struct {
	Coupon         *Coupon `json:"coupon,omitempty"`
	DiscountAmount int64   `json:"discount_amount"`
	FinalAmount    int64   `json:"final_amount"`
	Message        string  `json:"message,omitempty"`
}

type CreateRequest struct {
	Code                    string  `json:"code" binding:"required"`
	DiscountType            string  `json:"discount_type" binding:"required,oneof=percent flat free"`
	DiscountValue           int64   `json:"discount_value"`
	ApplicableTournamentIDs []int64 `json:"applicable_tournament_ids"`
	AllowedUserIDs          []int64 `json:"allowed_user_ids"`
	AllowedBGMIIDs          []string `json:"allowed_bgmi_ids"`
	MaxUses                 *int    `json:"max_uses"`
	MaxUsesPerUser          *int    `json:"max_uses_per_user"`
	MinOrderAmount          int64   `json:"min_order_amount"`
	ExpiresAt               *time.Time `json:"expires_at"`
}
