package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/luminary-arts/memberhub/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coupondomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*coupondomain.Coupon, error) {
	var coupon coupondomain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, ticketed_event_id, redemption_count, max_redemptions, created_at, updated_at
		 FROM coupons WHERE id = ?`,
		id,
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*coupondomain.Coupon, error) {
	var coupon coupondomain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, ticketed_event_id, redemption_count, max_redemptions, created_at, updated_at
		 FROM coupons WHERE code = ?`,
		code,
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) IncrementRedemptions(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE coupons SET redemption_count = redemption_count + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(),
		id,
	).Error
}
