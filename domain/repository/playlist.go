package repository

import (
	"context"

	"idle-fm-api/domain/model"
)

type IPlaylist interface {
	// List returns public playlists plus every playlist owned by viewerID.
	List(ctx context.Context, viewerID int) ([]model.Playlist, error)
	GetByID(ctx context.Context, id int) (*model.Playlist, error)
	TitlesByOwner(ctx context.Context, ownerID int) ([]string, error)
	Create(ctx context.Context, playlist *model.Playlist) (int, error)
	Delete(ctx context.Context, id int) error

	Items(ctx context.Context, playlistID int) ([]model.PlaylistItem, error)
	AppendVideo(ctx context.Context, playlistID int, videoID int64) (int, error)
	AppendGif(ctx context.Context, playlistID int, gifID int) (int, error)
	// InsertVideos writes videoIDs at positions 1..n.
	InsertVideos(ctx context.Context, playlistID int, videoIDs []int64) error
	// Reorder assigns positions 1..n following itemIDs.
	Reorder(ctx context.Context, playlistID int, itemIDs []int) error
	RemoveItem(ctx context.Context, playlistID, itemID int) error
	LinkTags(ctx context.Context, playlistID int, tagIDs []int) error
}

type ITag interface {
	List(ctx context.Context) ([]model.Tag, error)
	FindOrCreate(ctx context.Context, name string) (int, error)
}

type IGif interface {
	List(ctx context.Context) ([]model.Gif, error)
	GetByID(ctx context.Context, id int) (*model.Gif, error)
}
