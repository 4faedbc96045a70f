package usecase

import (
	"context"
	"fmt"
	"strings"

	"idle-fm-api/domain/dto"
	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
)

const defaultVideoLimit = 50

type IAdminUsecase interface {
	GeneratePlaylist(ctx context.Context, req dto.GeneratePlaylistRequest) (*dto.GeneratePlaylistResponse, error)
}

type AdminUsecase struct {
	search       ISearchUseCase
	playlists    repository.IPlaylist
	tags         repository.ITag
	systemUserID int
}

func NewAdminUsecase(search ISearchUseCase, playlists repository.IPlaylist, tags repository.ITag, systemUserID int) *AdminUsecase {
	return &AdminUsecase{search: search, playlists: playlists, tags: tags, systemUserID: systemUserID}
}

// GeneratePlaylist builds a public playlist owned by the system account from
// the search results for the given tags.
func (u *AdminUsecase) GeneratePlaylist(ctx context.Context, req dto.GeneratePlaylistRequest) (*dto.GeneratePlaylistResponse, error) {
	if strings.TrimSpace(req.Title) == "" || len(req.Tags) == 0 {
		return nil, fmt.Errorf("%w: title and at least one tag are required", ErrValidation)
	}
	limit := req.VideoLimit
	if limit <= 0 {
		limit = defaultVideoLimit
	}

	query := strings.Join(append(append([]string{}, req.Tags...), "music"), " ")
	slots, err := u.search.SearchMedia(ctx, query)
	if err != nil {
		return nil, err
	}
	selected := make([]*model.Video, 0, limit)
	for _, s := range slots {
		if len(selected) == limit {
			break
		}
		if !s.Missing() {
			selected = append(selected, s.Video)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoVideosFound
	}

	existing, err := u.playlists.TitlesByOwner(ctx, u.systemUserID)
	if err != nil {
		return nil, err
	}
	var image *string
	if url := selected[0].Thumbnails.Primary(); url != "" {
		image = &url
	}
	p := &model.Playlist{
		UserID:      u.systemUserID,
		Title:       UniqueTitle(req.Title, existing),
		Description: req.Description,
		IsPublic:    true,
		Image:       image,
	}
	playlistID, err := u.playlists.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	tagIDs, err := resolveTags(ctx, u.tags, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := u.playlists.LinkTags(ctx, playlistID, tagIDs); err != nil {
		return nil, err
	}

	videoIDs := make([]int64, len(selected))
	for i, v := range selected {
		videoIDs[i] = v.ID
	}
	if err := u.playlists.InsertVideos(ctx, playlistID, videoIDs); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"playlist_id": playlistID,
		"videos":      len(videoIDs),
		"query":       query,
	}).Info("Playlist generated")

	return &dto.GeneratePlaylistResponse{
		Message:    "Playlist generated",
		PlaylistID: playlistID,
		TagIDs:     tagIDs,
		Image:      image,
		OwnerID:    u.systemUserID,
	}, nil
}
