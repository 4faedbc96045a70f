package repository

import (
	"context"

	"idle-fm-api/domain/model"
)

// IVideoStore is the durable store of video metadata keyed by YouTube key
type IVideoStore interface {
	// Upsert inserts the record or overwrites its display fields, raw payload and updated_at.
	Upsert(ctx context.Context, video *model.Video) error
	// GetMany returns the subset of keys that exist; absent keys are simply missing from the map.
	GetMany(ctx context.Context, keys []string) (map[string]*model.Video, error)
	GetByKey(ctx context.Context, key string) (*model.Video, error)
	ListRecent(ctx context.Context, limit int) ([]model.Video, error)
}
