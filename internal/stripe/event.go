// Package stripe parses webhook payloads and talks to the Stripe REST
// API. Only the handful of event shapes the platform reacts to are
// modeled; everything else parses to KindUnhandled.
package stripe

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPayload = errors.New("invalid_payload")
	ErrInvalidEvent   = errors.New("invalid_event")
)

// EventKind enumerates the event types the webhook dispatcher handles.
type EventKind int

const (
	KindUnhandled EventKind = iota
	KindCheckoutSessionCompleted
	KindSubscriptionUpdated
	KindSubscriptionDeleted
	KindInvoicePaymentSucceeded
	KindInvoicePaymentFailed
)

// Event is the parsed webhook envelope. Exactly one of the object
// pointers is set for handled kinds; all are nil for KindUnhandled.
type Event struct {
	ID      string
	Type    string
	Kind    EventKind
	Created int64

	CheckoutSession *CheckoutSession
	Subscription    *Subscription
	Invoice         *Invoice
}

// Checkout session modes as sent by the provider.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// CheckoutSession mirrors the fields of a checkout.session object the
// platform consumes. AmountTotal is a pointer because webhook payloads
// are not always fully expanded and may carry null.
type CheckoutSession struct {
	ID           string         `json:"id"`
	Mode         string         `json:"mode"`
	AmountTotal  *int64         `json:"amount_total"`
	Currency     string         `json:"currency"`
	Customer     string         `json:"customer"`
	Subscription string         `json:"subscription"`
	Metadata     map[string]any `json:"metadata"`
	LineItems    *LineItemList  `json:"line_items"`
}

// Subscription mirrors a customer.subscription object.
type Subscription struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAt           *int64 `json:"cancel_at"`
	CanceledAt         *int64 `json:"canceled_at"`
}

// Invoice mirrors the subset of an invoice object the platform reads.
type Invoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
}

type LineItemList struct {
	Data []LineItem `json:"data"`
}

type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AmountTotal int64  `json:"amount_total"`
}

type eventEnvelope struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    eventData `json:"data"`
}

type eventData struct {
	Object json.RawMessage `json:"object"`
}

// ParseEvent decodes a webhook payload into a typed Event.
func ParseEvent(payload []byte) (*Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(envelope.ID) == "" {
		return nil, ErrInvalidEvent
	}

	event := &Event{
		ID:      envelope.ID,
		Type:    strings.TrimSpace(envelope.Type),
		Created: envelope.Created,
	}

	switch event.Type {
	case "checkout.session.completed":
		var session CheckoutSession
		if err := json.Unmarshal(envelope.Data.Object, &session); err != nil {
			return nil, ErrInvalidPayload
		}
		event.Kind = KindCheckoutSessionCompleted
		event.CheckoutSession = &session
	case "customer.subscription.updated", "customer.subscription.deleted":
		var subscription Subscription
		if err := json.Unmarshal(envelope.Data.Object, &subscription); err != nil {
			return nil, ErrInvalidPayload
		}
		if event.Type == "customer.subscription.updated" {
			event.Kind = KindSubscriptionUpdated
		} else {
			event.Kind = KindSubscriptionDeleted
		}
		event.Subscription = &subscription
	case "invoice.payment_succeeded", "invoice.payment_failed":
		var invoice Invoice
		if err := json.Unmarshal(envelope.Data.Object, &invoice); err != nil {
			return nil, ErrInvalidPayload
		}
		if event.Type == "invoice.payment_succeeded" {
			event.Kind = KindInvoicePaymentSucceeded
		} else {
			event.Kind = KindInvoicePaymentFailed
		}
		event.Invoice = &invoice
	default:
		event.Kind = KindUnhandled
	}

	return event, nil
}

// MetadataString coerces a metadata value to a trimmed string. Stripe
// metadata is string-typed on the wire, but decoding through
// map[string]any can surface numbers.
func MetadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case float64:
		if cast == 0 {
			return ""
		}
		return strconv.FormatInt(int64(cast), 10)
	case json.Number:
		return cast.String()
	case int64:
		return strconv.FormatInt(cast, 10)
	case int:
		return strconv.Itoa(cast)
	}
	return ""
}

// MetadataBool reports whether a metadata flag is set to "true".
func MetadataBool(metadata map[string]any, key string) bool {
	return strings.EqualFold(MetadataString(metadata, key), "true")
}

// UnixTime converts a provider epoch into *time.Time, nil for zero.
func UnixTime(value int64) *time.Time {
	if value == 0 {
		return nil
	}
	t := time.Unix(value, 0).UTC()
	return &t
}

// UnixTimePtr converts an optional provider epoch into *time.Time.
func UnixTimePtr(value *int64) *time.Time {
	if value == nil {
		return nil
	}
	return UnixTime(*value)
}
