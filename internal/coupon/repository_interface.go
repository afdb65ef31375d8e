package coupon

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	Create(ctx context.Context, req CreateRequest, createdBy int) (*Coupon, error)
	FindActiveByCode(ctx context.Context, code string) (*Coupon, error)
	FindByID(ctx context.Context, id int) (*Coupon, error)
	List(ctx context.Context, limit, offset int) ([]Coupon, error)
	Deactivate(ctx context.Context, id int) error
	UsageCount(ctx context.Context, couponID, userID int) (int, error)
	CommitUsageTx(ctx context.Context, tx *sqlx.Tx, couponID, userID int) error
}
