package coupon

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const couponColumns = `id, code, discount_type, discount_value, applicable_tournament_ids,
	allowed_user_ids, allowed_bgmi_ids, max_uses, used_count, max_uses_per_user,
	min_order_amount, expires_at, active, created_by, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, req CreateRequest, createdBy int) (*Coupon, error) {
	var cp Coupon
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO coupons (code, discount_type, discount_value, applicable_tournament_ids,
			allowed_user_ids, allowed_bgmi_ids, max_uses, max_uses_per_user,
			min_order_amount, expires_at, active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11)
		RETURNING `+couponColumns,
		NormalizeCode(req.Code), req.DiscountType, req.DiscountValue,
		pq.Array(req.ApplicableTournamentIDs), pq.Array(req.AllowedUserIDs), pq.Array(req.AllowedBGMIIDs),
		req.MaxUses, req.MaxUsesPerUser, req.MinOrderAmount, req.ExpiresAt, createdBy,
	).StructScan(&cp)
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	var cp Coupon
	err := r.db.GetContext(ctx, &cp, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE code = $1 AND active = TRUE`,
		NormalizeCode(code),
	)
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*Coupon, error) {
	var cp Coupon
	err := r.db.GetContext(ctx, &cp, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Coupon, error) {
	if limit <= 0 {
		limit = 50
	}

	var coupons []Coupon
	err := r.db.SelectContext(ctx, &coupons, `
		SELECT `+couponColumns+`
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}

	return coupons, nil
}

func (r *Repository) Deactivate(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (r *Repository) UsageCount(ctx context.Context, couponID, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COALESCE(SUM(count), 0)
		FROM coupon_usages
		WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CommitUsageTx increments the global and per-user counters inside the
// caller's transaction. The guarded UPDATE re-checks the global cap so two
// racing commits cannot overshoot max_uses.
func (r *Repository) CommitUsageTx(ctx context.Context, tx *sqlx.Tx, couponID, userID int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)`,
		couponID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCouponUsageLimitReached
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO coupon_usages (coupon_id, user_id, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (coupon_id, user_id)
		DO UPDATE SET count = coupon_usages.count + 1, updated_at = NOW()`,
		couponID, userID,
	)
	return err
}
