package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

type repo struct{}

func Provide() ticketdomain.Repository {
	return &repo{}
}

const ticketColumns = `id, ticketed_event_id, purchaser_email, purchaser_name, amount_paid_cents,
	 currency, stripe_session_id, coupon_id, ticket_code, ticket_image_url, email_sent_at,
	 created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tickets (
			id, ticketed_event_id, purchaser_email, purchaser_name, amount_paid_cents,
			currency, stripe_session_id, coupon_id, ticket_code, ticket_image_url,
			email_sent_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID,
		ticket.TicketedEventID,
		ticket.PurchaserEmail,
		ticket.PurchaserName,
		ticket.AmountPaidCents,
		ticket.Currency,
		ticket.StripeSessionID,
		ticket.CouponID,
		ticket.TicketCode,
		ticket.TicketImageURL,
		ticket.EmailSentAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ticketdomain.Ticket, error) {
	var ticket ticketdomain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`,
		id,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*ticketdomain.Ticket, error) {
	var ticket ticketdomain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE stripe_session_id = ?`,
		sessionID,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) UpdateArtifact(ctx context.Context, db *gorm.DB, id snowflake.ID, imageURL string, emailSentAt *time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tickets SET ticket_image_url = ?, email_sent_at = ?, updated_at = ? WHERE id = ?`,
		imageURL,
		emailSentAt,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, p pagination.Pagination) ([]ticketdomain.Ticket, *pagination.PageInfo, error) {
	limit := p.PageSize
	if limit <= 0 {
		limit = 25
	}

	stmt := db.WithContext(ctx).Model(&ticketdomain.Ticket{})
	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if cursor.ID != "" {
			stmt = stmt.Where("id < ?", cursor.ID)
		}
	}

	var tickets []ticketdomain.Ticket
	err := stmt.
		Order("id desc").
		Limit(limit + 1).
		Find(&tickets).Error
	if err != nil {
		return nil, nil, err
	}

	pageInfo, tickets := pagination.BuildCursorPageInfo(tickets, limit, func(t ticketdomain.Ticket) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: t.ID.String()})
		return token
	})
	return tickets, pageInfo, nil
}
