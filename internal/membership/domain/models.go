// Package domain contains persistence models for memberships.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MembershipStatus represents lifecycle states for a membership.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusCancelled MembershipStatus = "cancelled"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusPastDue   MembershipStatus = "past_due"
	MembershipStatusTrialing  MembershipStatus = "trialing"
)

// StatusFromStripe maps the provider's subscription status vocabulary to
// the internal lifecycle enum. Unknown values map to expired so a
// membership never stays active on a status we do not understand.
func StatusFromStripe(status string) MembershipStatus {
	switch status {
	case "active":
		return MembershipStatusActive
	case "canceled":
		return MembershipStatusCancelled
	case "incomplete", "incomplete_expired", "unpaid":
		return MembershipStatusExpired
	case "past_due":
		return MembershipStatusPastDue
	case "trialing":
		return MembershipStatusTrialing
	default:
		return MembershipStatusExpired
	}
}

// Membership captures a user's subscription record. Rows are never hard
// deleted; lifecycle ends in cancelled or expired.
type Membership struct {
	ID                   snowflake.ID     `gorm:"primaryKey"`
	UserID               snowflake.ID     `gorm:"not null;index;uniqueIndex:ux_memberships_user_subscription"`
	TierID               snowflake.ID     `gorm:"not null"`
	Status               MembershipStatus `gorm:"type:text;not null"`
	StripeSubscriptionID string           `gorm:"type:text;not null;index;uniqueIndex:ux_memberships_user_subscription"`
	StripeCustomerID     string           `gorm:"type:text"`
	DiscordRoleAssigned  bool             `gorm:"not null;default:false"`
	CurrentPeriodStart   *time.Time       `gorm:""`
	CurrentPeriodEnd     *time.Time       `gorm:""`
	CancelAt             *time.Time       `gorm:""`
	CancelledAt          *time.Time       `gorm:""`
	LastSyncedAt         *time.Time       `gorm:""`
	CreatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }
