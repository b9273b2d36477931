package discord

import "context"

// Provider mutates guild roles through the bot API.
type Provider interface {
	AssignRole(ctx context.Context, discordUserID, roleID string) error
	RemoveRole(ctx context.Context, discordUserID, roleID string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) AssignRole(ctx context.Context, discordUserID, roleID string) error {
	return nil
}

func (p *NoOpProvider) RemoveRole(ctx context.Context, discordUserID, roleID string) error {
	return nil
}
