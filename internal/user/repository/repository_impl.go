package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/luminary-arts/memberhub/internal/user/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, name, discord_user_id, onboarding, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) PatchOnboarding(ctx context.Context, db *gorm.DB, id snowflake.ID, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	user, err := r.FindByID(ctx, db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	merged := datatypes.JSONMap{}
	for key, value := range user.Onboarding {
		merged[key] = value
	}
	for key, value := range patch {
		merged[key] = value
	}

	return db.WithContext(ctx).Exec(
		`UPDATE users SET onboarding = ?, updated_at = ? WHERE id = ?`,
		merged,
		time.Now().UTC(),
		id,
	).Error
}
