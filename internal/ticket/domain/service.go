package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

var ErrNotFound = errors.New("ticket_not_found")

// TicketCheckout carries the fields extracted from a completed
// event-ticket checkout session. AmountTotal is nil when the webhook
// payload arrived without an expanded amount.
type TicketCheckout struct {
	SessionID       string
	TicketedEventID snowflake.ID
	PurchaserEmail  string
	PurchaserName   string
	AmountTotal     *int64
	Currency        string
	CouponID        *snowflake.ID
}

type Service interface {
	HandleTicketCheckout(ctx context.Context, checkout TicketCheckout) error
	RegenerateArtifact(ctx context.Context, ticketID snowflake.ID) error
	List(ctx context.Context, p pagination.Pagination) ([]Ticket, *pagination.PageInfo, error)
}
