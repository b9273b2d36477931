// Package domain contains the ticket model and service contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Ticket is a proof-of-purchase record for a pay-what-you-want event.
// StripeSessionID is unique so a redelivered checkout webhook cannot
// issue the same ticket twice. TicketImageURL stays empty until the
// artifact worker has rendered and uploaded the ticket image.
type Ticket struct {
	ID              snowflake.ID  `gorm:"primaryKey"`
	TicketedEventID snowflake.ID  `gorm:"index;not null"`
	PurchaserEmail  string        `gorm:"type:text;not null"`
	PurchaserName   string        `gorm:"type:text"`
	AmountPaidCents int64         `gorm:"not null;default:0"`
	Currency        string        `gorm:"type:text"`
	StripeSessionID string        `gorm:"type:text;not null;uniqueIndex:ux_tickets_stripe_session"`
	CouponID        *snowflake.ID `gorm:""`
	TicketCode      string        `gorm:"type:text;not null;uniqueIndex"`
	TicketImageURL  string        `gorm:"type:text"`
	EmailSentAt     *time.Time    `gorm:""`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Ticket) TableName() string { return "tickets" }
