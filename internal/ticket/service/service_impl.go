package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	coupondomain "github.com/luminary-arts/memberhub/internal/coupon/domain"
	obsmetrics "github.com/luminary-arts/memberhub/internal/observability/metrics"
	"github.com/luminary-arts/memberhub/internal/stripe"
	"github.com/luminary-arts/memberhub/internal/ticket/artifact"
	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	"github.com/luminary-arts/memberhub/pkg/db"
	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       ticketdomain.Repository
	CouponRepo coupondomain.Repository
	Sessions   stripe.SessionFetcher
	Generator  *artifact.Generator
	Queue      *artifact.Queue
	Metrics    *obsmetrics.WebhookMetrics `optional:"true"`
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       ticketdomain.Repository
	couponRepo coupondomain.Repository
	sessions   stripe.SessionFetcher
	generator  *artifact.Generator
	queue      *artifact.Queue
	metrics    *obsmetrics.WebhookMetrics
}

func New(p Params) ticketdomain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("ticket.issuer"),
		genID:      p.GenID,
		repo:       p.Repo,
		couponRepo: p.CouponRepo,
		sessions:   p.Sessions,
		generator:  p.Generator,
		queue:      p.Queue,
		metrics:    p.Metrics,
	}
}

// HandleTicketCheckout issues a ticket for a completed event-ticket
// checkout. Redeliveries are absorbed by the unique session constraint.
// Failures past validation are logged and swallowed so the payment
// provider never retries a charge that already settled.
func (s *service) HandleTicketCheckout(ctx context.Context, checkout ticketdomain.TicketCheckout) error {
	log := s.log.With(
		zap.String("session_id", checkout.SessionID),
		zap.String("ticketed_event_id", checkout.TicketedEventID.String()),
	)

	if checkout.TicketedEventID == 0 || checkout.PurchaserEmail == "" {
		log.Warn("ticket checkout missing event or purchaser email, dropping")
		return nil
	}

	existing, err := s.repo.FindBySessionID(ctx, s.db, checkout.SessionID)
	if err != nil {
		log.Error("ticket lookup failed", zap.Error(err))
		return nil
	}
	if existing != nil {
		log.Info("ticket already issued for session, skipping",
			zap.String("ticket_id", existing.ID.String()),
		)
		return nil
	}

	amount := s.resolveAmount(ctx, checkout, log)

	now := time.Now().UTC()
	ticket := &ticketdomain.Ticket{
		ID:              s.genID.Generate(),
		TicketedEventID: checkout.TicketedEventID,
		PurchaserEmail:  checkout.PurchaserEmail,
		PurchaserName:   checkout.PurchaserName,
		AmountPaidCents: amount,
		Currency:        checkout.Currency,
		StripeSessionID: checkout.SessionID,
		CouponID:        checkout.CouponID,
		TicketCode:      uuid.New().String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, ticket); err != nil {
		if db.IsDuplicateKeyErr(err) {
			log.Info("ticket already issued for session, skipping")
			return nil
		}
		log.Error("ticket insert failed", zap.Error(err))
		return nil
	}

	log.Info("ticket issued",
		zap.String("ticket_id", ticket.ID.String()),
		zap.Int64("amount_paid_cents", amount),
	)

	if checkout.CouponID != nil {
		if err := s.redeemCoupon(ctx, *checkout.CouponID); err != nil {
			log.Error("coupon redemption failed", zap.Error(err))
		}
	}

	if err := s.queue.Enqueue(ctx, ticket.ID.String()); err != nil {
		log.Error("artifact enqueue failed", zap.Error(err))
	}
	return nil
}

// resolveAmount works around webhook payloads arriving without an
// expanded amount: try the payload, then a session re-fetch, then the
// line item sum, before falling back to whatever the payload carried.
func (s *service) resolveAmount(ctx context.Context, checkout ticketdomain.TicketCheckout, log *zap.Logger) int64 {
	var payloadAmount int64
	if checkout.AmountTotal != nil {
		payloadAmount = *checkout.AmountTotal
	}
	if payloadAmount > 0 {
		return payloadAmount
	}

	session, err := s.sessions.GetCheckoutSession(ctx, checkout.SessionID)
	if err != nil {
		log.Warn("session re-fetch failed, keeping payload amount", zap.Error(err))
		return payloadAmount
	}
	if session.AmountTotal != nil && *session.AmountTotal > 0 {
		return *session.AmountTotal
	}

	items, err := s.sessions.ListLineItems(ctx, checkout.SessionID)
	if err != nil {
		log.Warn("line item fetch failed, keeping payload amount", zap.Error(err))
		return payloadAmount
	}
	var sum int64
	for _, item := range items {
		sum += item.AmountTotal
	}
	if sum > 0 {
		return sum
	}
	return payloadAmount
}

func (s *service) redeemCoupon(ctx context.Context, couponID snowflake.ID) error {
	coupon, err := s.couponRepo.FindByID(ctx, s.db, couponID)
	if err != nil {
		return err
	}
	if coupon == nil {
		s.log.Warn("coupon referenced by checkout not found",
			zap.String("coupon_id", couponID.String()),
		)
		return nil
	}
	return s.couponRepo.IncrementRedemptions(ctx, s.db, couponID)
}

// RegenerateArtifact re-renders and re-sends a ticket synchronously.
// Admin remediation path for tickets whose artifact job failed.
func (s *service) RegenerateArtifact(ctx context.Context, ticketID snowflake.ID) error {
	return s.generator.Generate(ctx, ticketID)
}

func (s *service) List(ctx context.Context, p pagination.Pagination) ([]ticketdomain.Ticket, *pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, p)
}
