package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	membershipdomain "github.com/luminary-arts/memberhub/internal/membership/domain"
	membershiprepo "github.com/luminary-arts/memberhub/internal/membership/repository"
	membershipservice "github.com/luminary-arts/memberhub/internal/membership/service"
	userrepo "github.com/luminary-arts/memberhub/internal/user/repository"
)

type fakeRoleSync struct {
	assignCalls int
	removeCalls int
	assignErr   error
}

func (f *fakeRoleSync) Assign(ctx context.Context, membershipID, userID, tierID snowflake.ID) error {
	f.assignCalls++
	return f.assignErr
}

func (f *fakeRoleSync) Remove(ctx context.Context, membershipID, userID, tierID snowflake.ID) error {
	f.removeCalls++
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			discord_user_id TEXT NOT NULL DEFAULT '',
			onboarding TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_users_email ON users(email)`,
		`CREATE TABLE memberships (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			tier_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			stripe_subscription_id TEXT NOT NULL DEFAULT '',
			stripe_customer_id TEXT NOT NULL DEFAULT '',
			discord_role_assigned BOOLEAN NOT NULL DEFAULT FALSE,
			current_period_start DATETIME,
			current_period_end DATETIME,
			cancel_at DATETIME,
			cancelled_at DATETIME,
			last_synced_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_memberships_user_subscription ON memberships(user_id, stripe_subscription_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, roleSync *fakeRoleSync) (membershipdomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(10)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := membershipservice.New(membershipservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     membershiprepo.Provide(),
		UserRepo: userrepo.Provide(),
		RoleSync: roleSync,
	})
	return svc, node
}

func seedUser(t *testing.T, db *gorm.DB, id snowflake.ID, email string) {
	t.Helper()
	now := time.Now().UTC()
	err := db.Exec(
		`INSERT INTO users (id, email, name, discord_user_id, onboarding, created_at, updated_at)
		 VALUES (?, ?, '', '', '{}', ?, ?)`,
		id, email, now, now,
	).Error
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func loadMembership(t *testing.T, db *gorm.DB, subscriptionID string) *membershipdomain.Membership {
	t.Helper()
	var membership membershipdomain.Membership
	err := db.Raw(
		`SELECT id, user_id, tier_id, status, stripe_subscription_id, stripe_customer_id,
			discord_role_assigned, cancel_at, cancelled_at
		 FROM memberships WHERE stripe_subscription_id = ?`,
		subscriptionID,
	).Scan(&membership).Error
	if err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if membership.ID == 0 {
		return nil
	}
	return &membership
}

func countMemberships(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM memberships`).Scan(&count).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	return count
}

func TestCheckoutCompletedCreatesActiveMembership(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	roleSync := &fakeRoleSync{}
	svc, node := newTestService(t, db, roleSync)

	userID := node.Generate()
	tierID := node.Generate()
	seedUser(t, db, userID, "member@example.org")

	input := membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         tierID,
		SubscriptionID: "sub_1",
		CustomerID:     "cus_1",
	}
	if err := svc.HandleCheckoutCompleted(ctx, input); err != nil {
		t.Fatalf("handle checkout: %v", err)
	}

	if got := countMemberships(t, db); got != 1 {
		t.Fatalf("expected 1 membership, got %d", got)
	}
	membership := loadMembership(t, db, "sub_1")
	if membership == nil {
		t.Fatal("membership not found")
	}
	if membership.UserID != userID || membership.TierID != tierID {
		t.Fatalf("unexpected membership identity: %+v", membership)
	}
	if membership.Status != membershipdomain.MembershipStatusActive {
		t.Fatalf("expected active status, got %s", membership.Status)
	}
	if membership.StripeCustomerID != "cus_1" {
		t.Fatalf("expected customer cus_1, got %s", membership.StripeCustomerID)
	}
	if roleSync.assignCalls != 1 {
		t.Fatalf("expected 1 role assignment, got %d", roleSync.assignCalls)
	}
}

func TestCheckoutCompletedRedeliveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newTestService(t, db, &fakeRoleSync{})

	userID := node.Generate()
	seedUser(t, db, userID, "member@example.org")

	input := membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         node.Generate(),
		SubscriptionID: "sub_redeliver",
		CustomerID:     "cus_1",
	}
	for i := 0; i < 2; i++ {
		if err := svc.HandleCheckoutCompleted(ctx, input); err != nil {
			t.Fatalf("handle checkout delivery %d: %v", i+1, err)
		}
	}

	if got := countMemberships(t, db); got != 1 {
		t.Fatalf("expected 1 membership after redelivery, got %d", got)
	}
}

func TestCheckoutCompletedMissingIdentifiers(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newTestService(t, db, &fakeRoleSync{})

	err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		TierID:         node.Generate(),
		SubscriptionID: "sub_no_user",
	})
	if !errors.Is(err, membershipservice.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := countMemberships(t, db); got != 0 {
		t.Fatalf("expected no memberships, got %d", got)
	}
}

func TestCheckoutUpgradeReusesActiveMembership(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newTestService(t, db, &fakeRoleSync{})

	userID := node.Generate()
	oldTier := node.Generate()
	newTier := node.Generate()
	seedUser(t, db, userID, "member@example.org")

	if err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         oldTier,
		SubscriptionID: "sub_old",
	}); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// Upgrade swaps the provider subscription id while the user is
	// already active; the existing row must be reused.
	if err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         newTier,
		SubscriptionID: "sub_new",
	}); err != nil {
		t.Fatalf("upgrade checkout: %v", err)
	}

	if got := countMemberships(t, db); got != 1 {
		t.Fatalf("expected 1 membership after upgrade, got %d", got)
	}
	membership := loadMembership(t, db, "sub_new")
	if membership == nil {
		t.Fatal("membership not found under new subscription id")
	}
	if membership.TierID != newTier {
		t.Fatalf("expected tier %s, got %s", newTier, membership.TierID)
	}
	if membership.DiscordRoleAssigned {
		t.Fatal("role flag must reset on tier change")
	}
}

func TestRoleSyncFailureDoesNotBlockActivation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	roleSync := &fakeRoleSync{assignErr: errors.New("discord down")}
	svc, node := newTestService(t, db, roleSync)

	userID := node.Generate()
	seedUser(t, db, userID, "member@example.org")

	err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         node.Generate(),
		SubscriptionID: "sub_sync_fail",
	})
	if err != nil {
		t.Fatalf("checkout must not fail on role sync error: %v", err)
	}

	membership := loadMembership(t, db, "sub_sync_fail")
	if membership == nil || membership.Status != membershipdomain.MembershipStatusActive {
		t.Fatalf("expected committed active membership, got %+v", membership)
	}
}

func TestSubscriptionUpdatedStatusMapping(t *testing.T) {
	cases := []struct {
		external string
		want     membershipdomain.MembershipStatus
	}{
		{"active", membershipdomain.MembershipStatusActive},
		{"canceled", membershipdomain.MembershipStatusCancelled},
		{"incomplete", membershipdomain.MembershipStatusExpired},
		{"incomplete_expired", membershipdomain.MembershipStatusExpired},
		{"unpaid", membershipdomain.MembershipStatusExpired},
		{"past_due", membershipdomain.MembershipStatusPastDue},
		{"trialing", membershipdomain.MembershipStatusTrialing},
		{"some_future_status", membershipdomain.MembershipStatusExpired},
	}

	for _, tc := range cases {
		t.Run(tc.external, func(t *testing.T) {
			ctx := context.Background()
			db := setupTestDB(t)
			svc, node := newTestService(t, db, &fakeRoleSync{})

			userID := node.Generate()
			seedUser(t, db, userID, "member@example.org")
			subID := "sub_map_" + tc.external
			if err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
				UserID:         userID,
				TierID:         node.Generate(),
				SubscriptionID: subID,
			}); err != nil {
				t.Fatalf("seed checkout: %v", err)
			}

			if err := svc.HandleSubscriptionUpdated(ctx, membershipdomain.SubscriptionUpdate{
				SubscriptionID: subID,
				Status:         tc.external,
			}); err != nil {
				t.Fatalf("handle update: %v", err)
			}

			membership := loadMembership(t, db, subID)
			if membership == nil {
				t.Fatal("membership not found")
			}
			if membership.Status != tc.want {
				t.Fatalf("status %s mapped to %s, want %s", tc.external, membership.Status, tc.want)
			}
		})
	}
}

func TestSubscriptionUpdatedUnknownSubscriptionIsNoop(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newTestService(t, db, &fakeRoleSync{})

	err := svc.HandleSubscriptionUpdated(ctx, membershipdomain.SubscriptionUpdate{
		SubscriptionID: "sub_unknown",
		Status:         "active",
	})
	if err != nil {
		t.Fatalf("unknown subscription must not error: %v", err)
	}
	if got := countMemberships(t, db); got != 0 {
		t.Fatalf("expected no writes, got %d rows", got)
	}
}

func TestSubscriptionDeletedCancelsAndRemovesRole(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	roleSync := &fakeRoleSync{}
	svc, node := newTestService(t, db, roleSync)

	userID := node.Generate()
	seedUser(t, db, userID, "member@example.org")
	if err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         node.Generate(),
		SubscriptionID: "sub_1",
	}); err != nil {
		t.Fatalf("seed checkout: %v", err)
	}

	if err := svc.HandleSubscriptionDeleted(ctx, "sub_1"); err != nil {
		t.Fatalf("handle deleted: %v", err)
	}

	membership := loadMembership(t, db, "sub_1")
	if membership == nil {
		t.Fatal("membership not found")
	}
	if membership.Status != membershipdomain.MembershipStatusCancelled {
		t.Fatalf("expected cancelled, got %s", membership.Status)
	}
	if membership.CancelledAt == nil {
		t.Fatal("cancelledAt must be stamped")
	}
	if roleSync.removeCalls != 1 {
		t.Fatalf("expected 1 role removal attempt, got %d", roleSync.removeCalls)
	}
}

func TestSubscriptionDeletedUnknownIsSilentNoop(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	roleSync := &fakeRoleSync{}
	svc, _ := newTestService(t, db, roleSync)

	if err := svc.HandleSubscriptionDeleted(ctx, "sub_missing"); err != nil {
		t.Fatalf("unknown subscription must not error: %v", err)
	}
	if roleSync.removeCalls != 0 {
		t.Fatal("no role removal expected for unknown subscription")
	}
}

func TestInvoicePaymentsSetAbsoluteStatus(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, node := newTestService(t, db, &fakeRoleSync{})

	userID := node.Generate()
	seedUser(t, db, userID, "member@example.org")
	if err := svc.HandleCheckoutCompleted(ctx, membershipdomain.CheckoutCompleted{
		UserID:         userID,
		TierID:         node.Generate(),
		SubscriptionID: "sub_invoice",
	}); err != nil {
		t.Fatalf("seed checkout: %v", err)
	}

	if err := svc.HandleInvoicePaymentFailed(ctx, "sub_invoice"); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if got := loadMembership(t, db, "sub_invoice").Status; got != membershipdomain.MembershipStatusPastDue {
		t.Fatalf("expected past_due, got %s", got)
	}

	// Self-heals back to active on the next successful payment, and
	// redelivery of the same event keeps the same state.
	for i := 0; i < 2; i++ {
		if err := svc.HandleInvoicePaymentSucceeded(ctx, "sub_invoice"); err != nil {
			t.Fatalf("payment succeeded: %v", err)
		}
	}
	if got := loadMembership(t, db, "sub_invoice").Status; got != membershipdomain.MembershipStatusActive {
		t.Fatalf("expected active, got %s", got)
	}

	if err := svc.HandleInvoicePaymentSucceeded(ctx, "sub_other"); err != nil {
		t.Fatalf("unknown subscription must not error: %v", err)
	}
}
