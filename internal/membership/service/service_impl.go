package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/luminary-arts/memberhub/internal/membership/domain"
	"github.com/luminary-arts/memberhub/internal/rolesync"
	userdomain "github.com/luminary-arts/memberhub/internal/user/domain"
	"github.com/luminary-arts/memberhub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidInput flags reconciler input that cannot be processed. Events
// carrying it are dropped, not retried.
var ErrInvalidInput = errors.New("invalid_reconciler_input")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     membershipdomain.Repository
	UserRepo userdomain.Repository
	RoleSync rolesync.Service
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     membershipdomain.Repository
	userRepo userdomain.Repository
	roleSync rolesync.Service
}

func New(p Params) membershipdomain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("membership.reconciler"),
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		roleSync: p.RoleSync,
	}
}

// HandleCheckoutCompleted upserts a membership from a completed
// subscription checkout. Redelivered events converge on the same row:
// the lookup prefers an exact user+subscription match, falls back to the
// user's active membership, and a duplicate-key insert is retried as an
// update.
func (s *service) HandleCheckoutCompleted(ctx context.Context, input membershipdomain.CheckoutCompleted) error {
	if input.UserID == 0 || input.TierID == 0 {
		return ErrInvalidInput
	}

	now := time.Now().UTC()
	log := s.log.With(
		zap.String("user_id", input.UserID.String()),
		zap.String("tier_id", input.TierID.String()),
		zap.String("subscription_id", input.SubscriptionID),
	)

	membership, err := s.upsert(ctx, input, now)
	if err != nil {
		return err
	}
	log.Info("membership reconciled from checkout",
		zap.String("membership_id", membership.ID.String()),
	)

	if err := s.roleSync.Assign(ctx, membership.ID, membership.UserID, membership.TierID); err != nil {
		// Membership state is the source of truth; role sync stays best effort.
		log.Warn("role assignment failed", zap.Error(err))
	}

	if input.Onboarding {
		patch := map[string]any{"membership_selected": true}
		if input.TierSlug != "" {
			patch["selected_tier_slug"] = input.TierSlug
		}
		if err := s.userRepo.PatchOnboarding(ctx, s.db, input.UserID, patch); err != nil {
			log.Warn("onboarding patch failed", zap.Error(err))
		}
	}

	return nil
}

func (s *service) upsert(ctx context.Context, input membershipdomain.CheckoutCompleted, now time.Time) (*membershipdomain.Membership, error) {
	existing, err := s.repo.FindByUserAndSubscriptionID(ctx, s.db, input.UserID, input.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Tolerates upgrades/downgrades that swap the provider
		// subscription id while a membership is already active.
		existing, err = s.repo.FindActiveByUserID(ctx, s.db, input.UserID)
		if err != nil {
			return nil, err
		}
	}

	if existing != nil {
		s.applyCheckout(existing, input, now)
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	membership := &membershipdomain.Membership{
		ID:                   s.genID.Generate(),
		UserID:               input.UserID,
		TierID:               input.TierID,
		Status:               membershipdomain.MembershipStatusActive,
		StripeSubscriptionID: input.SubscriptionID,
		StripeCustomerID:     input.CustomerID,
		DiscordRoleAssigned:  false,
		CurrentPeriodStart:   input.PeriodStart,
		CurrentPeriodEnd:     input.PeriodEnd,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Insert(ctx, s.db, membership); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		// Lost a race against a concurrent delivery for the same
		// user+subscription; the unique index turns it into an update.
		existing, findErr := s.repo.FindByUserAndSubscriptionID(ctx, s.db, input.UserID, input.SubscriptionID)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, err
		}
		s.applyCheckout(existing, input, now)
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	return membership, nil
}

func (s *service) applyCheckout(membership *membershipdomain.Membership, input membershipdomain.CheckoutCompleted, now time.Time) {
	if membership.TierID != input.TierID || membership.Status != membershipdomain.MembershipStatusActive {
		// Optimistic reset; only a confirmed bot call sets it back.
		membership.DiscordRoleAssigned = false
	}
	membership.TierID = input.TierID
	membership.Status = membershipdomain.MembershipStatusActive
	membership.StripeSubscriptionID = input.SubscriptionID
	membership.StripeCustomerID = input.CustomerID
	if input.PeriodStart != nil {
		membership.CurrentPeriodStart = input.PeriodStart
	}
	if input.PeriodEnd != nil {
		membership.CurrentPeriodEnd = input.PeriodEnd
	}
	membership.UpdatedAt = now
}

// HandleSubscriptionUpdated maps the provider status onto the internal
// lifecycle and refreshes period bounds. A lookup miss is a no-op: the
// provider may deliver events in an order the local store does not
// expect yet.
func (s *service) HandleSubscriptionUpdated(ctx context.Context, input membershipdomain.SubscriptionUpdate) error {
	membership, err := s.repo.FindBySubscriptionID(ctx, s.db, input.SubscriptionID)
	if err != nil {
		return err
	}
	if membership == nil {
		s.log.Error("subscription update for unknown membership",
			zap.String("subscription_id", input.SubscriptionID),
		)
		return nil
	}

	now := time.Now().UTC()
	status := membershipdomain.StatusFromStripe(input.Status)
	if membership.Status != status {
		membership.DiscordRoleAssigned = false
	}
	membership.Status = status
	if input.PeriodStart != nil {
		membership.CurrentPeriodStart = input.PeriodStart
	}
	if input.PeriodEnd != nil {
		membership.CurrentPeriodEnd = input.PeriodEnd
	}
	membership.CancelAt = input.CancelAt
	membership.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, membership); err != nil {
		return err
	}

	if status == membershipdomain.MembershipStatusCancelled || status == membershipdomain.MembershipStatusExpired {
		if err := s.roleSync.Remove(ctx, membership.ID, membership.UserID, membership.TierID); err != nil {
			s.log.Warn("role removal failed",
				zap.String("membership_id", membership.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// HandleSubscriptionDeleted cancels the membership and revokes the role.
func (s *service) HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error {
	membership, err := s.repo.FindBySubscriptionID(ctx, s.db, subscriptionID)
	if err != nil {
		return err
	}
	if membership == nil {
		return nil
	}

	now := time.Now().UTC()
	membership.Status = membershipdomain.MembershipStatusCancelled
	membership.CancelledAt = &now
	membership.DiscordRoleAssigned = false
	membership.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, membership); err != nil {
		return err
	}

	if err := s.roleSync.Remove(ctx, membership.ID, membership.UserID, membership.TierID); err != nil {
		s.log.Warn("role removal failed",
			zap.String("membership_id", membership.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// HandleInvoicePaymentSucceeded self-heals a past-due membership back to
// active once a payment lands.
func (s *service) HandleInvoicePaymentSucceeded(ctx context.Context, subscriptionID string) error {
	return s.setStatus(ctx, subscriptionID, membershipdomain.MembershipStatusActive)
}

// HandleInvoicePaymentFailed parks the membership in past_due.
func (s *service) HandleInvoicePaymentFailed(ctx context.Context, subscriptionID string) error {
	return s.setStatus(ctx, subscriptionID, membershipdomain.MembershipStatusPastDue)
}

func (s *service) setStatus(ctx context.Context, subscriptionID string, status membershipdomain.MembershipStatus) error {
	membership, err := s.repo.FindBySubscriptionID(ctx, s.db, subscriptionID)
	if err != nil {
		return err
	}
	if membership == nil {
		return nil
	}

	now := time.Now().UTC()
	if membership.Status != status {
		membership.DiscordRoleAssigned = false
	}
	membership.Status = status
	membership.UpdatedAt = now
	return s.repo.Update(ctx, s.db, membership)
}
