package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ticketedeventdomain "github.com/luminary-arts/memberhub/internal/ticketedevent/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ticketedeventdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ticketedeventdomain.TicketedEvent, error) {
	var event ticketedeventdomain.TicketedEvent
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, venue, starts_at, created_at, updated_at
		 FROM ticketed_events WHERE id = ?`,
		id,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}
