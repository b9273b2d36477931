// Package webhook routes verified payment provider events to the
// membership reconciler and the ticket issuer.
package webhook

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	membershipdomain "github.com/luminary-arts/memberhub/internal/membership/domain"
	membershipservice "github.com/luminary-arts/memberhub/internal/membership/service"
	obsmetrics "github.com/luminary-arts/memberhub/internal/observability/metrics"
	"github.com/luminary-arts/memberhub/internal/stripe"
	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
)

// checkout sessions carrying this metadata type are event-ticket
// purchases; everything else is treated as a subscription checkout.
const metadataTypeEventTicket = "event_ticket"

type Service interface {
	Process(ctx context.Context, payload []byte, signatureHeader string) error
}

type Params struct {
	fx.In

	Log         *zap.Logger
	Verifier    *stripe.Verifier
	Memberships membershipdomain.Service
	Tickets     ticketdomain.Service
	Metrics     *obsmetrics.WebhookMetrics `optional:"true"`
}

type service struct {
	log         *zap.Logger
	verifier    *stripe.Verifier
	memberships membershipdomain.Service
	tickets     ticketdomain.Service
	metrics     *obsmetrics.WebhookMetrics
}

func New(p Params) Service {
	return &service{
		log:         p.Log.Named("webhook.router"),
		verifier:    p.Verifier,
		memberships: p.Memberships,
		tickets:     p.Tickets,
		metrics:     p.Metrics,
	}
}

// Process verifies the signature, parses the envelope, and dispatches by
// event kind. A nil return acknowledges the delivery; a non-nil return
// tells the provider to retry.
func (s *service) Process(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := s.verifier.Verify(payload, signatureHeader); err != nil {
		s.record("unknown", "rejected")
		return err
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		s.record("unknown", "rejected")
		return err
	}

	log := s.log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	var handleErr error
	switch event.Kind {
	case stripe.KindCheckoutSessionCompleted:
		handleErr = s.handleCheckoutCompleted(ctx, event.CheckoutSession)
	case stripe.KindSubscriptionUpdated:
		handleErr = s.memberships.HandleSubscriptionUpdated(ctx, membershipdomain.SubscriptionUpdate{
			SubscriptionID: event.Subscription.ID,
			Status:         event.Subscription.Status,
			PeriodStart:    stripe.UnixTime(event.Subscription.CurrentPeriodStart),
			PeriodEnd:      stripe.UnixTime(event.Subscription.CurrentPeriodEnd),
			CancelAt:       stripe.UnixTimePtr(event.Subscription.CancelAt),
		})
	case stripe.KindSubscriptionDeleted:
		handleErr = s.memberships.HandleSubscriptionDeleted(ctx, event.Subscription.ID)
	case stripe.KindInvoicePaymentSucceeded:
		handleErr = s.handleInvoice(ctx, event.Invoice, log, s.memberships.HandleInvoicePaymentSucceeded)
	case stripe.KindInvoicePaymentFailed:
		handleErr = s.handleInvoice(ctx, event.Invoice, log, s.memberships.HandleInvoicePaymentFailed)
	default:
		log.Info("ignoring unhandled event type")
		s.record(event.Type, "ignored")
		return nil
	}

	if handleErr != nil {
		if errors.Is(handleErr, membershipservice.ErrInvalidInput) {
			log.Warn("event missing required metadata, dropping")
			s.record(event.Type, "dropped")
			return nil
		}
		log.Error("event handling failed", zap.Error(handleErr))
		s.record(event.Type, "error")
		return handleErr
	}

	s.record(event.Type, "ok")
	return nil
}

func (s *service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	// One-time payment sessions are always ticket purchases; subscription
	// sessions carry the ticket discriminator only when issued for an event.
	if session.Mode == stripe.ModePayment || stripe.MetadataString(session.Metadata, "type") == metadataTypeEventTicket {
		return s.tickets.HandleTicketCheckout(ctx, ticketdomain.TicketCheckout{
			SessionID:       session.ID,
			TicketedEventID: parseSnowflake(stripe.MetadataString(session.Metadata, "eventId")),
			PurchaserEmail:  stripe.MetadataString(session.Metadata, "purchaserEmail"),
			PurchaserName:   stripe.MetadataString(session.Metadata, "purchaserName"),
			AmountTotal:     session.AmountTotal,
			Currency:        session.Currency,
			CouponID:        parseOptionalSnowflake(stripe.MetadataString(session.Metadata, "couponId")),
		})
	}

	return s.memberships.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         parseSnowflake(stripe.MetadataString(session.Metadata, "userId")),
		TierID:         parseSnowflake(stripe.MetadataString(session.Metadata, "tierId")),
		TierSlug:       stripe.MetadataString(session.Metadata, "tierSlug"),
		SubscriptionID: session.Subscription,
		CustomerID:     session.Customer,
		Onboarding:     stripe.MetadataBool(session.Metadata, "onboarding"),
	})
}

func (s *service) handleInvoice(ctx context.Context, invoice *stripe.Invoice, log *zap.Logger, handle func(context.Context, string) error) error {
	if invoice.Subscription == "" {
		log.Info("invoice without subscription, ignoring")
		return nil
	}
	return handle(ctx, invoice.Subscription)
}

func (s *service) record(eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordEvent(eventType, outcome)
	}
}

func parseSnowflake(value string) snowflake.ID {
	if value == "" {
		return 0
	}
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0
	}
	return id
}

func parseOptionalSnowflake(value string) *snowflake.ID {
	id := parseSnowflake(value)
	if id == 0 {
		return nil
	}
	return &id
}
