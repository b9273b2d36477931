package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tierdomain "github.com/luminary-arts/memberhub/internal/tier/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tierdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tierdomain.Tier, error) {
	var tier tierdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, access_level, discord_role_id, stripe_price_id, created_at, updated_at
		 FROM tiers WHERE id = ?`,
		id,
	).Scan(&tier).Error
	if err != nil {
		return nil, err
	}
	if tier.ID == 0 {
		return nil, nil
	}
	return &tier, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*tierdomain.Tier, error) {
	var tier tierdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, access_level, discord_role_id, stripe_price_id, created_at, updated_at
		 FROM tiers WHERE slug = ?`,
		slug,
	).Scan(&tier).Error
	if err != nil {
		return nil, err
	}
	if tier.ID == 0 {
		return nil, nil
	}
	return &tier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]tierdomain.Tier, error) {
	var tiers []tierdomain.Tier
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, name, access_level, discord_role_id, stripe_price_id, created_at, updated_at
		 FROM tiers ORDER BY access_level ASC`,
	).Scan(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
