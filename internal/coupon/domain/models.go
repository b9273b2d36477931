// Package domain contains the ticket coupon model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Coupon is a discount code for ticketed events. RedemptionCount is only
// mutated through Repository.IncrementRedemptions so redeliveries cannot
// double count.
type Coupon struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Code            string       `gorm:"type:text;not null;uniqueIndex"`
	TicketedEventID snowflake.ID `gorm:"index"`
	RedemptionCount int          `gorm:"not null;default:0"`
	MaxRedemptions  *int         `gorm:""`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Coupon) TableName() string { return "coupons" }
