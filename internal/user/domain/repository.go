package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	// PatchOnboarding merges the given keys into the user's onboarding
	// progress blob, preserving keys not present in the patch.
	PatchOnboarding(ctx context.Context, db *gorm.DB, id snowflake.ID, patch map[string]any) error
}
