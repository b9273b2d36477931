package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config carries the bot API connection settings.
type Config struct {
	APIBaseURL string
	BotToken   string
	GuildID    string
	Timeout    time.Duration
}

// BotProvider talks to the Discord REST API with a bot token.
type BotProvider struct {
	cfg    Config
	client *http.Client
}

func NewBot(cfg Config) *BotProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BotProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *BotProvider) AssignRole(ctx context.Context, discordUserID, roleID string) error {
	return p.mutateRole(ctx, http.MethodPut, discordUserID, roleID)
}

func (p *BotProvider) RemoveRole(ctx context.Context, discordUserID, roleID string) error {
	return p.mutateRole(ctx, http.MethodDelete, discordUserID, roleID)
}

func (p *BotProvider) mutateRole(ctx context.Context, method, discordUserID, roleID string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s",
		strings.TrimRight(p.cfg.APIBaseURL, "/"),
		p.cfg.GuildID,
		discordUserID,
		roleID,
	)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+p.cfg.BotToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord role mutation failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
