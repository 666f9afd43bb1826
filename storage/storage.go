package storage

import (
	"context"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jawat-my/saferoute/model"
)

// defaultListLimit caps record listings when callers pass no limit.
const defaultListLimit = 50

type Storage interface {
	SaveRecord(ctx context.Context, rec *model.RelayRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*model.RelayRecord, error)
	ListRecords(ctx context.Context, limit int) ([]*model.RelayRecord, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	Close() error
}
