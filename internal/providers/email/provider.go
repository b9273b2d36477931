package email

import "context"

// Provider delivers transactional mail. Ticket delivery is best effort,
// callers log failures instead of propagating them.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
