// Package seed provisions the default tier catalog so a fresh install
// can reconcile memberships immediately.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	tierdomain "github.com/luminary-arts/memberhub/internal/tier/domain"
)

type defaultTier struct {
	slug        string
	name        string
	accessLevel int
}

var defaultTiers = []defaultTier{
	{slug: "free", name: "Free", accessLevel: 0},
	{slug: "supporter", name: "Supporter", accessLevel: 10},
	{slug: "patron", name: "Patron", accessLevel: 20},
}

// EnsureDefaultTiers inserts the default tier catalog, skipping slugs
// that already exist. Existing rows are never modified.
func EnsureDefaultTiers(conn *gorm.DB, genID *snowflake.Node) error {
	for _, t := range defaultTiers {
		var count int64
		if err := conn.Raw(`SELECT COUNT(1) FROM tiers WHERE slug = ?`, t.slug).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		now := time.Now().UTC()
		tier := tierdomain.Tier{
			ID:          genID.Generate(),
			Slug:        t.slug,
			Name:        t.name,
			AccessLevel: t.accessLevel,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := conn.Exec(
			`INSERT INTO tiers (id, slug, name, access_level, discord_role_id, stripe_price_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, '', '', ?, ?)`,
			tier.ID, tier.Slug, tier.Name, tier.AccessLevel, tier.CreatedAt, tier.UpdatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
