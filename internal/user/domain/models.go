// Package domain contains the platform user model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User is a platform account. DiscordUserID is empty for users who never
// linked a chat identity; role sync skips them.
type User struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	Email         string            `gorm:"type:text;not null;uniqueIndex"`
	Name          string            `gorm:"type:text"`
	DiscordUserID string            `gorm:"type:text"`
	Onboarding    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
