// Package domain contains the membership tier catalog model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tier is a static catalog entry describing a membership level. The
// webhook path only ever reads tiers; mutations happen through admin
// tooling and seeds.
type Tier struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	Slug          string       `gorm:"type:text;not null;uniqueIndex"`
	Name          string       `gorm:"type:text;not null"`
	AccessLevel   int          `gorm:"not null;default:0"`
	DiscordRoleID string       `gorm:"type:text"`
	StripePriceID string       `gorm:"type:text"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tier) TableName() string { return "tiers" }
