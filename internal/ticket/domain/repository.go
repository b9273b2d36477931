package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/luminary-arts/memberhub/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Ticket, error)
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*Ticket, error)
	UpdateArtifact(ctx context.Context, db *gorm.DB, id snowflake.ID, imageURL string, emailSentAt *time.Time) error
	List(ctx context.Context, db *gorm.DB, p pagination.Pagination) ([]Ticket, *pagination.PageInfo, error)
}
