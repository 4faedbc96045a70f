package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"

	"golang.org/x/sync/errgroup"
)

// ISearchUseCase resolves a user query into ordered, hydrated video slots
type ISearchUseCase interface {
	SearchMedia(ctx context.Context, rawQuery string) ([]model.MediaSlot, error)
}

// SearchUseCase consults the query cache, falls back to YouTube on a miss,
// refreshes the video store and hydrates results from it.
type SearchUseCase struct {
	cache             repository.ISearchCache
	videos            repository.IVideoStore
	youtube           repository.IYouTubeSearch
	observer          SearchObserver
	upsertConcurrency int
}

func NewSearchUseCase(cache repository.ISearchCache, videos repository.IVideoStore, youtube repository.IYouTubeSearch) *SearchUseCase {
	return &SearchUseCase{
		cache:             cache,
		videos:            videos,
		youtube:           youtube,
		observer:          LogSearchObserver{},
		upsertConcurrency: 4,
	}
}

// WithObserver replaces the default logging observer (fluent)
func (u *SearchUseCase) WithObserver(o SearchObserver) *SearchUseCase {
	if o != nil {
		u.observer = o
	}
	return u
}

// WithUpsertConcurrency bounds parallel metadata upserts (fluent)
func (u *SearchUseCase) WithUpsertConcurrency(n int) *SearchUseCase {
	if n > 0 {
		u.upsertConcurrency = n
	}
	return u
}

// NormalizeQuery trims and lower-cases a query; the result is the cache key.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (u *SearchUseCase) SearchMedia(ctx context.Context, rawQuery string) ([]model.MediaSlot, error) {
	query := NormalizeQuery(rawQuery)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}

	ids, found, err := u.cache.Get(ctx, query)
	if err != nil {
		u.observer.CacheReadFailed(ctx, query, err)
		found = false
	}
	if found {
		u.observer.CacheHit(ctx, query, len(ids))
	} else {
		u.observer.CacheMiss(ctx, query)
		ids, err = u.refresh(ctx, query)
		if err != nil {
			return nil, err
		}
	}
	return u.hydrate(ctx, query, ids)
}

type extractedItem struct {
	key  string
	item model.SearchItem
}

// refresh fetches query from YouTube, stores every usable item and appends a
// cache entry. Nothing is written when the search call fails.
func (u *SearchUseCase) refresh(ctx context.Context, query string) ([]string, error) {
	resp, err := u.youtube.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamSearch, err)
	}
	if resp == nil || resp.Items == nil {
		return nil, fmt.Errorf("%w: response has no items", ErrUpstreamSearch)
	}

	items := make([]extractedItem, 0, len(resp.Items))
	ids := make([]string, 0, len(resp.Items))
	for i, it := range resp.Items {
		key, ok := ExtractVideoID(it.ID)
		if !ok {
			u.observer.ItemSkipped(ctx, query, i)
			continue
		}
		items = append(items, extractedItem{key: key, item: it})
		ids = append(ids, key)
	}

	details := map[string]model.SearchItem{}
	if len(ids) > 0 {
		for _, d := range u.youtube.FetchDetails(ctx, ids) {
			if key, ok := ExtractVideoID(d.ID); ok {
				details[key] = d
			}
		}
	}

	u.persist(ctx, items, details)

	// The entry is written only once every upsert has been attempted.
	if err := u.cache.Put(ctx, query, ids); err != nil {
		u.observer.CacheWriteFailed(ctx, query, err)
	}
	return ids, nil
}

func (u *SearchUseCase) persist(ctx context.Context, items []extractedItem, details map[string]model.SearchItem) {
	var g errgroup.Group
	g.SetLimit(u.upsertConcurrency)
	for _, it := range items {
		it := it
		detail, hasDetail := details[it.key]
		video := buildVideo(it.key, it.item, detail, hasDetail)
		g.Go(func() error {
			if err := u.videos.Upsert(ctx, video); err != nil {
				u.observer.UpsertFailed(ctx, it.key, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (u *SearchUseCase) hydrate(ctx context.Context, query string, ids []string) ([]model.MediaSlot, error) {
	slots := make([]model.MediaSlot, len(ids))
	if len(ids) == 0 {
		u.observer.Hydrated(ctx, query, 0, 0)
		return slots, nil
	}
	stored, err := u.videos.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate search results: %w", err)
	}
	missing := 0
	for i, id := range ids {
		slots[i] = model.MediaSlot{Key: id, Video: stored[id]}
		if slots[i].Missing() {
			missing++
		}
	}
	u.observer.Hydrated(ctx, query, len(ids), missing)
	return slots, nil
}

func buildVideo(key string, item, detail model.SearchItem, hasDetail bool) *model.Video {
	v := &model.Video{YouTubeKey: key, Thumbnails: model.Thumbnails{}}
	if item.Snippet != nil {
		v.Title = html.UnescapeString(item.Snippet.Title)
		v.ChannelTitle = html.UnescapeString(item.Snippet.ChannelTitle)
		if item.Snippet.Thumbnails != nil {
			v.Thumbnails = item.Snippet.Thumbnails
		}
	}
	if hasDetail && detail.ContentDetails != nil && detail.ContentDetails.Duration != "" {
		d := detail.ContentDetails.Duration
		v.Duration = &d
	}
	v.RawJSON = mergeRaw(item, detail, hasDetail)
	return v
}

// mergeRaw returns the original item payload with the detail's
// contentDetails merged in.
func mergeRaw(item, detail model.SearchItem, hasDetail bool) json.RawMessage {
	raw := item.Raw
	if len(raw) == 0 {
		b, err := json.Marshal(item)
		if err != nil {
			return nil
		}
		raw = b
	}
	if !hasDetail || len(detail.Raw) == 0 {
		return raw
	}
	var fields, detailFields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}
	if err := json.Unmarshal(detail.Raw, &detailFields); err != nil {
		return raw
	}
	cd, ok := detailFields["contentDetails"]
	if !ok {
		return raw
	}
	fields["contentDetails"] = cd
	merged, err := json.Marshal(fields)
	if err != nil {
		return raw
	}
	return merged
}
