// Package rolesync mirrors membership tiers onto Discord guild roles.
// Role sync is best effort: the membership row is the source of truth and
// a failed sync is repaired by a later manual re-sync.
package rolesync

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/luminary-arts/memberhub/internal/membership/domain"
	obsmetrics "github.com/luminary-arts/memberhub/internal/observability/metrics"
	"github.com/luminary-arts/memberhub/internal/providers/discord"
	tierdomain "github.com/luminary-arts/memberhub/internal/tier/domain"
	userdomain "github.com/luminary-arts/memberhub/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service grants and revokes the Discord role mapped to a tier.
type Service interface {
	Assign(ctx context.Context, membershipID, userID, tierID snowflake.ID) error
	Remove(ctx context.Context, membershipID, userID, tierID snowflake.ID) error
}

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Bot            discord.Provider
	UserRepo       userdomain.Repository
	TierRepo       tierdomain.Repository
	MembershipRepo membershipdomain.Repository
	Metrics        *obsmetrics.WebhookMetrics `optional:"true"`
}

type service struct {
	db             *gorm.DB
	log            *zap.Logger
	bot            discord.Provider
	userRepo       userdomain.Repository
	tierRepo       tierdomain.Repository
	membershipRepo membershipdomain.Repository
	metrics        *obsmetrics.WebhookMetrics
}

func New(p Params) Service {
	return &service{
		db:             p.DB,
		log:            p.Log.Named("rolesync"),
		bot:            p.Bot,
		userRepo:       p.UserRepo,
		tierRepo:       p.TierRepo,
		membershipRepo: p.MembershipRepo,
		metrics:        p.Metrics,
	}
}

func (s *service) Assign(ctx context.Context, membershipID, userID, tierID snowflake.ID) error {
	return s.mutate(ctx, "assign", membershipID, userID, tierID)
}

func (s *service) Remove(ctx context.Context, membershipID, userID, tierID snowflake.ID) error {
	return s.mutate(ctx, "remove", membershipID, userID, tierID)
}

func (s *service) mutate(ctx context.Context, operation string, membershipID, userID, tierID snowflake.ID) error {
	log := s.log.With(
		zap.String("operation", operation),
		zap.String("membership_id", membershipID.String()),
		zap.String("user_id", userID.String()),
		zap.String("tier_id", tierID.String()),
	)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil || user.DiscordUserID == "" {
		// Expected for users who never linked a chat identity.
		log.Info("skipping role sync, user has no discord identity")
		s.metrics.RecordRoleSync(operation, "skipped")
		return nil
	}

	tier, err := s.tierRepo.FindByID(ctx, s.db, tierID)
	if err != nil {
		return err
	}
	if tier == nil || tier.DiscordRoleID == "" {
		log.Info("skipping role sync, tier has no discord role")
		s.metrics.RecordRoleSync(operation, "skipped")
		return nil
	}

	switch operation {
	case "assign":
		err = s.bot.AssignRole(ctx, user.DiscordUserID, tier.DiscordRoleID)
	default:
		err = s.bot.RemoveRole(ctx, user.DiscordUserID, tier.DiscordRoleID)
	}
	if err != nil {
		s.metrics.RecordRoleSync(operation, "error")
		return err
	}

	assigned := operation == "assign"
	if err := s.membershipRepo.SetRoleAssigned(ctx, s.db, membershipID, assigned, time.Now().UTC()); err != nil {
		return err
	}

	s.metrics.RecordRoleSync(operation, "ok")
	log.Info("role sync completed", zap.Bool("assigned", assigned))
	return nil
}
