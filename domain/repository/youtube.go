package repository

import (
	"context"

	"idle-fm-api/domain/model"
)

// IYouTubeSearch is the subset of the YouTube Data API used by search
type IYouTubeSearch interface {
	// Search fails when the provider reports an error or returns no item collection.
	Search(ctx context.Context, query string) (*model.SearchResponse, error)
	// FetchDetails returns contentDetails items for ids. It never fails; on
	// error the result is empty.
	FetchDetails(ctx context.Context, ids []string) []model.SearchItem
}
