package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/luminary-arts/memberhub/internal/config"
)

var ErrAPIKeyMissing = errors.New("stripe_api_key_missing")

// SessionFetcher re-fetches checkout sessions when the webhook payload
// arrives without an expanded amount.
type SessionFetcher interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
}

type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSessionFetcher builds a SessionFetcher against the Stripe REST API.
func NewSessionFetcher(cfg config.Config) SessionFetcher {
	baseURL := cfg.Stripe.APIBaseURL
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &apiClient{
		baseURL: baseURL,
		apiKey:  cfg.Stripe.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.get(ctx, fmt.Sprintf("/v1/checkout/sessions/%s", sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *apiClient) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	var list LineItemList
	if err := c.get(ctx, fmt.Sprintf("/v1/checkout/sessions/%s/line_items", sessionID), &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	if c.apiKey == "" {
		return ErrAPIKeyMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stripe api %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
