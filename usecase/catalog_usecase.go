package usecase

import (
	"context"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

const (
	defaultRecentVideos = 20
	maxRecentVideos     = 100
)

type ICatalogUsecase interface {
	Tags(ctx context.Context) ([]model.Tag, error)
	Gifs(ctx context.Context) ([]model.Gif, error)
	RecentVideos(ctx context.Context, limit int) ([]model.Video, error)
}

type CatalogUsecase struct {
	tags   repository.ITag
	gifs   repository.IGif
	videos repository.IVideoStore
}

func NewCatalogUsecase(tags repository.ITag, gifs repository.IGif, videos repository.IVideoStore) *CatalogUsecase {
	return &CatalogUsecase{tags: tags, gifs: gifs, videos: videos}
}

func (u *CatalogUsecase) Tags(ctx context.Context) ([]model.Tag, error) {
	return u.tags.List(ctx)
}

func (u *CatalogUsecase) Gifs(ctx context.Context) ([]model.Gif, error) {
	return u.gifs.List(ctx)
}

// RecentVideos lists the most recently refreshed metadata records; limit is
// clamped to 1..100 and defaults to 20.
func (u *CatalogUsecase) RecentVideos(ctx context.Context, limit int) ([]model.Video, error) {
	switch {
	case limit <= 0:
		limit = defaultRecentVideos
	case limit > maxRecentVideos:
		limit = maxRecentVideos
	}
	return u.videos.ListRecent(ctx, limit)
}
