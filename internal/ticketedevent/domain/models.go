// Package domain contains the ticketed event model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TicketedEvent is a pay-what-you-want event that tickets reference.
type TicketedEvent struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Title     string       `gorm:"type:text;not null"`
	Venue     string       `gorm:"type:text"`
	StartsAt  *time.Time   `gorm:""`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TicketedEvent) TableName() string { return "ticketed_events" }
