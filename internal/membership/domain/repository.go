package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, membership *Membership) error
	Update(ctx context.Context, db *gorm.DB, membership *Membership) error
	FindByUserAndSubscriptionID(ctx context.Context, db *gorm.DB, userID snowflake.ID, subscriptionID string) (*Membership, error)
	FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*Membership, error)
	FindActiveByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Membership, error)
	SetRoleAssigned(ctx context.Context, db *gorm.DB, id snowflake.ID, assigned bool, syncedAt time.Time) error
}
