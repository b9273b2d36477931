package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/luminary-arts/memberhub/internal/config"
	"github.com/luminary-arts/memberhub/internal/server"
	"github.com/luminary-arts/memberhub/internal/stripe"
	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

type fakeWebhookService struct {
	err     error
	payload []byte
}

func (f *fakeWebhookService) Process(ctx context.Context, payload []byte, signatureHeader string) error {
	f.payload = payload
	return f.err
}

type fakeTicketService struct {
	regenerateErr error
	regenerated   snowflake.ID
}

func (f *fakeTicketService) HandleTicketCheckout(ctx context.Context, checkout ticketdomain.TicketCheckout) error {
	return nil
}

func (f *fakeTicketService) RegenerateArtifact(ctx context.Context, ticketID snowflake.ID) error {
	f.regenerated = ticketID
	return f.regenerateErr
}

func (f *fakeTicketService) List(ctx context.Context, p pagination.Pagination) ([]ticketdomain.Ticket, *pagination.PageInfo, error) {
	return []ticketdomain.Ticket{}, &pagination.PageInfo{}, nil
}

func newTestServer(webhooks *fakeWebhookService, tickets *fakeTicketService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	server.NewServer(server.ServerParams{
		Engine:   engine,
		Cfg:      config.Config{},
		Webhooks: webhooks,
		Tickets:  tickets,
	})
	return engine
}

func postWebhook(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("stripe-signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookEndpointStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"invalid signature", stripe.ErrInvalidSignature, http.StatusBadRequest},
		{"invalid payload", stripe.ErrInvalidPayload, http.StatusBadRequest},
		{"missing secret", stripe.ErrSecretMissing, http.StatusInternalServerError},
		{"handler failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			webhooks := &fakeWebhookService{err: tc.serviceErr}
			engine := newTestServer(webhooks, &fakeTicketService{})

			rec := postWebhook(engine, `{"id":"evt_1"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if string(webhooks.payload) != `{"id":"evt_1"}` {
				t.Fatalf("raw body not forwarded: %q", webhooks.payload)
			}
			if tc.wantStatus == http.StatusOK && !strings.Contains(rec.Body.String(), `"received":true`) {
				t.Fatalf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestRegenerateTicketEndpoint(t *testing.T) {
	tickets := &fakeTicketService{}
	engine := newTestServer(&fakeWebhookService{}, tickets)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/tickets/123456789/regenerate", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if tickets.regenerated.String() != "123456789" {
		t.Fatalf("regenerated id = %s", tickets.regenerated)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/tickets/not-a-number/regenerate", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegenerateTicketNotFound(t *testing.T) {
	tickets := &fakeTicketService{regenerateErr: ticketdomain.ErrNotFound}
	engine := newTestServer(&fakeWebhookService{}, tickets)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/tickets/42/regenerate", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListTicketsEndpoint(t *testing.T) {
	engine := newTestServer(&fakeWebhookService{}, &fakeTicketService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/tickets?page_size=10", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "page_info") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
