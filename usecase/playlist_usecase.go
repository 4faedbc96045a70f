package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"idle-fm-api/domain/dto"
	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
)

// Actor is the authenticated caller of a playlist operation.
type Actor struct {
	UserID  int
	IsAdmin bool
}

func (a Actor) canEdit(p *model.Playlist) bool {
	return a.IsAdmin || p.UserID == a.UserID
}

func (a Actor) canView(p *model.Playlist) bool {
	return p.IsPublic || a.canEdit(p)
}

// PlaylistBroadcaster fans playlist changes out to live subscribers.
type PlaylistBroadcaster interface {
	Publish(event dto.PlaylistEvent)
}

type IPlaylistUsecase interface {
	List(ctx context.Context, actor Actor) ([]model.Playlist, error)
	Create(ctx context.Context, actor Actor, req dto.CreatePlaylistRequest) (*model.Playlist, error)
	Get(ctx context.Context, actor Actor, id int) (*model.Playlist, error)
	Delete(ctx context.Context, actor Actor, id int) error
	Items(ctx context.Context, actor Actor, id int) ([]model.PlaylistItem, error)
	AddVideo(ctx context.Context, actor Actor, id int, youtubeKey string) (int, error)
	AddGif(ctx context.Context, actor Actor, id int, gifID int) (int, error)
	Reorder(ctx context.Context, actor Actor, id int, itemIDs []int) error
	RemoveItem(ctx context.Context, actor Actor, id, itemID int) error
	AddTags(ctx context.Context, actor Actor, id int, tags []string) ([]int, error)
}

type PlaylistUsecase struct {
	playlists   repository.IPlaylist
	videos      repository.IVideoStore
	gifs        repository.IGif
	tags        repository.ITag
	broadcaster PlaylistBroadcaster
}

func NewPlaylistUsecase(playlists repository.IPlaylist, videos repository.IVideoStore, gifs repository.IGif, tags repository.ITag) *PlaylistUsecase {
	return &PlaylistUsecase{playlists: playlists, videos: videos, gifs: gifs, tags: tags}
}

// WithBroadcaster enables live change notifications (fluent)
func (u *PlaylistUsecase) WithBroadcaster(b PlaylistBroadcaster) *PlaylistUsecase {
	u.broadcaster = b
	return u
}

func (u *PlaylistUsecase) List(ctx context.Context, actor Actor) ([]model.Playlist, error) {
	return u.playlists.List(ctx, actor.UserID)
}

func (u *PlaylistUsecase) Create(ctx context.Context, actor Actor, req dto.CreatePlaylistRequest) (*model.Playlist, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	title, err := u.uniqueTitle(ctx, actor.UserID, req.Title)
	if err != nil {
		return nil, err
	}
	p := &model.Playlist{
		UserID:      actor.UserID,
		Title:       title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	id, err := u.playlists.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (u *PlaylistUsecase) Get(ctx context.Context, actor Actor, id int) (*model.Playlist, error) {
	p, err := u.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(p) {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (u *PlaylistUsecase) Delete(ctx context.Context, actor Actor, id int) error {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := u.playlists.Delete(ctx, id); err != nil {
		return err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventPlaylistGone, PlaylistID: id, ActorID: actor.UserID})
	return nil
}

func (u *PlaylistUsecase) Items(ctx context.Context, actor Actor, id int) ([]model.PlaylistItem, error) {
	if _, err := u.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return u.playlists.Items(ctx, id)
}

// AddVideo appends a video that is already in the metadata store.
func (u *PlaylistUsecase) AddVideo(ctx context.Context, actor Actor, id int, youtubeKey string) (int, error) {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return 0, err
	}
	video, err := u.videos.GetByKey(ctx, strings.TrimSpace(youtubeKey))
	if errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%w: unknown video %q", ErrValidation, youtubeKey)
	}
	if err != nil {
		return 0, err
	}
	itemID, err := u.playlists.AppendVideo(ctx, id, video.ID)
	if err != nil {
		return 0, err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventItemAdded, PlaylistID: id, ItemID: itemID, ActorID: actor.UserID})
	return itemID, nil
}

func (u *PlaylistUsecase) AddGif(ctx context.Context, actor Actor, id int, gifID int) (int, error) {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return 0, err
	}
	if _, err := u.gifs.GetByID(ctx, gifID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: unknown gif %d", ErrValidation, gifID)
		}
		return 0, err
	}
	itemID, err := u.playlists.AppendGif(ctx, id, gifID)
	if err != nil {
		return 0, err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventItemAdded, PlaylistID: id, ItemID: itemID, ActorID: actor.UserID})
	return itemID, nil
}

// Reorder requires itemIDs to name every item of the playlist exactly once.
func (u *PlaylistUsecase) Reorder(ctx context.Context, actor Actor, id int, itemIDs []int) error {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return err
	}
	items, err := u.playlists.Items(ctx, id)
	if err != nil {
		return err
	}
	if !samePermutation(items, itemIDs) {
		return fmt.Errorf("%w: item_ids must list every playlist item exactly once", ErrValidation)
	}
	if err := u.playlists.Reorder(ctx, id, itemIDs); err != nil {
		return err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventItemsReorder, PlaylistID: id, ActorID: actor.UserID})
	return nil
}

func (u *PlaylistUsecase) RemoveItem(ctx context.Context, actor Actor, id, itemID int) error {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := u.playlists.RemoveItem(ctx, id, itemID); err != nil {
		return err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventItemRemoved, PlaylistID: id, ItemID: itemID, ActorID: actor.UserID})
	return nil
}

func (u *PlaylistUsecase) AddTags(ctx context.Context, actor Actor, id int, tags []string) ([]int, error) {
	if _, err := u.editable(ctx, actor, id); err != nil {
		return nil, err
	}
	tagIDs, err := resolveTags(ctx, u.tags, tags)
	if err != nil {
		return nil, err
	}
	if len(tagIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", ErrValidation)
	}
	if err := u.playlists.LinkTags(ctx, id, tagIDs); err != nil {
		return nil, err
	}
	u.publish(ctx, dto.PlaylistEvent{Type: dto.EventTagsUpdated, PlaylistID: id, ActorID: actor.UserID})
	return tagIDs, nil
}

func (u *PlaylistUsecase) editable(ctx context.Context, actor Actor, id int) (*model.Playlist, error) {
	p, err := u.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(p) {
		return nil, ErrForbidden
	}
	return p, nil
}

func (u *PlaylistUsecase) uniqueTitle(ctx context.Context, ownerID int, title string) (string, error) {
	existing, err := u.playlists.TitlesByOwner(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return UniqueTitle(title, existing), nil
}

func (u *PlaylistUsecase) publish(ctx context.Context, event dto.PlaylistEvent) {
	if u.broadcaster == nil {
		return
	}
	u.broadcaster.Publish(event)
	logger.WithContext(ctx).WithFields(map[string]interface{}{"playlist_id": event.PlaylistID, "type": event.Type}).Debug("playlist event published")
}

// UniqueTitle returns title, or title with the first free " (n)" suffix
// when the owner already has a playlist with that name.
func UniqueTitle(title string, existing []string) string {
	base := strings.TrimSpace(title)
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t] = struct{}{}
	}
	candidate := base
	for n := 1; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", base, n)
	}
}

// resolveTags lower-cases and de-duplicates names, then finds or creates each tag.
func resolveTags(ctx context.Context, tags repository.ITag, names []string) ([]int, error) {
	seen := map[string]struct{}{}
	ids := make([]int, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		id, err := tags.FindOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func samePermutation(items []model.PlaylistItem, ids []int) bool {
	if len(items) != len(ids) {
		return false
	}
	want := make(map[int]bool, len(items))
	for _, it := range items {
		want[it.ID] = true
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}
