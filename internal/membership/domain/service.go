package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CheckoutCompleted is the reconciler input for a completed subscription
// checkout session.
type CheckoutCompleted struct {
	UserID         snowflake.ID
	TierID         snowflake.ID
	TierSlug       string
	SubscriptionID string
	CustomerID     string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Onboarding     bool
}

// SubscriptionUpdate carries the provider's view of a subscription after
// an update event. Status is the raw provider vocabulary.
type SubscriptionUpdate struct {
	SubscriptionID string
	Status         string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	CancelAt       *time.Time
}

type Service interface {
	HandleCheckoutCompleted(ctx context.Context, input CheckoutCompleted) error
	HandleSubscriptionUpdated(ctx context.Context, input SubscriptionUpdate) error
	HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error
	HandleInvoicePaymentSucceeded(ctx context.Context, subscriptionID string) error
	HandleInvoicePaymentFailed(ctx context.Context, subscriptionID string) error
}
