package stripe

import (
	"errors"
	"testing"
)

func TestParseEventCheckoutSessionCompleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_1",
			"mode": "subscription",
			"amount_total": 1500,
			"currency": "usd",
			"customer": "cus_1",
			"subscription": "sub_1",
			"metadata": {"userId": "42", "tierId": "7", "onboarding": "true"}
		}}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Kind != KindCheckoutSessionCompleted {
		t.Fatalf("expected checkout kind, got %d", event.Kind)
	}
	session := event.CheckoutSession
	if session == nil {
		t.Fatal("checkout session object missing")
	}
	if session.ID != "cs_1" || session.Subscription != "sub_1" || session.Customer != "cus_1" {
		t.Fatalf("unexpected session fields: %+v", session)
	}
	if session.AmountTotal == nil || *session.AmountTotal != 1500 {
		t.Fatalf("unexpected amount: %v", session.AmountTotal)
	}
	if got := MetadataString(session.Metadata, "userId"); got != "42" {
		t.Fatalf("metadata userId = %q", got)
	}
	if !MetadataBool(session.Metadata, "onboarding") {
		t.Fatal("onboarding flag must parse true")
	}
}

func TestParseEventNullAmount(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_2", "amount_total": null}}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.CheckoutSession.AmountTotal != nil {
		t.Fatal("null amount must stay nil")
	}
}

func TestParseEventSubscriptionKinds(t *testing.T) {
	cases := []struct {
		eventType string
		want      EventKind
	}{
		{"customer.subscription.updated", KindSubscriptionUpdated},
		{"customer.subscription.deleted", KindSubscriptionDeleted},
	}
	for _, tc := range cases {
		payload := []byte(`{
			"id": "evt_3",
			"type": "` + tc.eventType + `",
			"data": {"object": {
				"id": "sub_1",
				"status": "past_due",
				"current_period_start": 1700000000,
				"current_period_end": 1702592000,
				"cancel_at": 1702592000
			}}
		}`)

		event, err := ParseEvent(payload)
		if err != nil {
			t.Fatalf("%s: parse event: %v", tc.eventType, err)
		}
		if event.Kind != tc.want {
			t.Fatalf("%s: kind = %d, want %d", tc.eventType, event.Kind, tc.want)
		}
		if event.Subscription == nil || event.Subscription.Status != "past_due" {
			t.Fatalf("%s: unexpected subscription: %+v", tc.eventType, event.Subscription)
		}
		if event.Subscription.CancelAt == nil {
			t.Fatalf("%s: cancel_at must parse", tc.eventType)
		}
	}
}

func TestParseEventInvoiceKinds(t *testing.T) {
	payload := []byte(`{
		"id": "evt_4",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_1", "subscription": "sub_1"}}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Kind != KindInvoicePaymentFailed {
		t.Fatalf("kind = %d", event.Kind)
	}
	if event.Invoice.Subscription != "sub_1" {
		t.Fatalf("unexpected invoice: %+v", event.Invoice)
	}
}

func TestParseEventUnhandledType(t *testing.T) {
	payload := []byte(`{"id": "evt_5", "type": "charge.refunded", "data": {"object": {}}}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Kind != KindUnhandled {
		t.Fatalf("expected unhandled kind, got %d", event.Kind)
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	if _, err := ParseEvent([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := ParseEvent([]byte(`{"type":"x"}`)); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for missing id, got %v", err)
	}
}

func TestMetadataStringCoercion(t *testing.T) {
	metadata := map[string]any{
		"str":   " 42 ",
		"num":   float64(7),
		"zero":  float64(0),
		"other": []string{"x"},
	}
	if got := MetadataString(metadata, "str"); got != "42" {
		t.Fatalf("str = %q", got)
	}
	if got := MetadataString(metadata, "num"); got != "7" {
		t.Fatalf("num = %q", got)
	}
	if got := MetadataString(metadata, "zero"); got != "" {
		t.Fatalf("zero = %q", got)
	}
	if got := MetadataString(metadata, "other"); got != "" {
		t.Fatalf("other = %q", got)
	}
	if got := MetadataString(nil, "any"); got != "" {
		t.Fatalf("nil metadata = %q", got)
	}
}
