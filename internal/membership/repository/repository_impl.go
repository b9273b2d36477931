package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/luminary-arts/memberhub/internal/membership/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() membershipdomain.Repository {
	return &repo{}
}

const membershipColumns = `id, user_id, tier_id, status, stripe_subscription_id, stripe_customer_id,
	 discord_role_assigned, current_period_start, current_period_end, cancel_at, cancelled_at,
	 last_synced_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, membership *membershipdomain.Membership) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO memberships (
			id, user_id, tier_id, status, stripe_subscription_id, stripe_customer_id,
			discord_role_assigned, current_period_start, current_period_end, cancel_at,
			cancelled_at, last_synced_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.UserID,
		membership.TierID,
		membership.Status,
		membership.StripeSubscriptionID,
		membership.StripeCustomerID,
		membership.DiscordRoleAssigned,
		membership.CurrentPeriodStart,
		membership.CurrentPeriodEnd,
		membership.CancelAt,
		membership.CancelledAt,
		membership.LastSyncedAt,
		membership.CreatedAt,
		membership.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, membership *membershipdomain.Membership) error {
	return db.WithContext(ctx).Exec(
		`UPDATE memberships SET
			tier_id = ?, status = ?, stripe_subscription_id = ?, stripe_customer_id = ?,
			discord_role_assigned = ?, current_period_start = ?, current_period_end = ?,
			cancel_at = ?, cancelled_at = ?, last_synced_at = ?, updated_at = ?
		 WHERE id = ?`,
		membership.TierID,
		membership.Status,
		membership.StripeSubscriptionID,
		membership.StripeCustomerID,
		membership.DiscordRoleAssigned,
		membership.CurrentPeriodStart,
		membership.CurrentPeriodEnd,
		membership.CancelAt,
		membership.CancelledAt,
		membership.LastSyncedAt,
		membership.UpdatedAt,
		membership.ID,
	).Error
}

func (r *repo) FindByUserAndSubscriptionID(ctx context.Context, db *gorm.DB, userID snowflake.ID, subscriptionID string) (*membershipdomain.Membership, error) {
	var membership membershipdomain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT `+membershipColumns+`
		 FROM memberships
		 WHERE user_id = ? AND stripe_subscription_id = ?
		 LIMIT 1`,
		userID,
		subscriptionID,
	).Scan(&membership).Error
	if err != nil {
		return nil, err
	}
	if membership.ID == 0 {
		return nil, nil
	}
	return &membership, nil
}

func (r *repo) FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*membershipdomain.Membership, error) {
	var membership membershipdomain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT `+membershipColumns+`
		 FROM memberships
		 WHERE stripe_subscription_id = ?
		 ORDER BY created_at DESC
		 LIMIT 1`,
		subscriptionID,
	).Scan(&membership).Error
	if err != nil {
		return nil, err
	}
	if membership.ID == 0 {
		return nil, nil
	}
	return &membership, nil
}

func (r *repo) FindActiveByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*membershipdomain.Membership, error) {
	var membership membershipdomain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT `+membershipColumns+`
		 FROM memberships
		 WHERE user_id = ? AND status = ?
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
		membershipdomain.MembershipStatusActive,
	).Scan(&membership).Error
	if err != nil {
		return nil, err
	}
	if membership.ID == 0 {
		return nil, nil
	}
	return &membership, nil
}

func (r *repo) SetRoleAssigned(ctx context.Context, db *gorm.DB, id snowflake.ID, assigned bool, syncedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE memberships SET discord_role_assigned = ?, last_synced_at = ?, updated_at = ? WHERE id = ?`,
		assigned,
		syncedAt,
		syncedAt,
		id,
	).Error
}
