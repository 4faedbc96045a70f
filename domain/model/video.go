package model

import (
	"encoding/json"
	"time"
)

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

// Thumbnails is keyed by the provider's nominal size ("default", "medium", "high", ...).
type Thumbnails map[string]Thumbnail

// Primary returns the medium thumbnail URL, falling back to default.
func (t Thumbnails) Primary() string {
	if th, ok := t["medium"]; ok && th.URL != "" {
		return th.URL
	}
	if th, ok := t["default"]; ok {
		return th.URL
	}
	return ""
}

// Video is the stored metadata record for one YouTube video, keyed by YouTubeKey.
type Video struct {
	ID           int64           `json:"id"`
	YouTubeKey   string          `json:"youtube_key"`
	Title        string          `json:"title"`
	ChannelTitle string          `json:"channel_title"`
	Thumbnails   Thumbnails      `json:"thumbnails"`
	Duration     *string         `json:"duration,omitempty"`
	RawJSON      json.RawMessage `json:"-"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MediaSlot is one position of a hydrated search result. Video is nil when
// the key had no stored record at hydrate time.
type MediaSlot struct {
	Key   string
	Video *Video
}

func (s MediaSlot) Missing() bool {
	return s.Video == nil
}

// SearchCacheEntry maps a normalized query to the ordered video keys it returned.
type SearchCacheEntry struct {
	Query     string    `json:"query"`
	VideoIDs  []string  `json:"video_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type ItemSnippet struct {
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

type ItemContentDetails struct {
	Duration string `json:"duration"`
}

// SearchItem is a single item as returned by the provider. ID is kept raw
// because its shape differs between endpoints and API generations.
type SearchItem struct {
	ID             json.RawMessage     `json:"id"`
	Snippet        *ItemSnippet        `json:"snippet,omitempty"`
	ContentDetails *ItemContentDetails `json:"contentDetails,omitempty"`
	Raw            json.RawMessage     `json:"-"`
}

// NewSearchItem decodes raw and keeps the original bytes on the item.
func NewSearchItem(raw json.RawMessage) (SearchItem, error) {
	var item SearchItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return SearchItem{}, err
	}
	item.Raw = raw
	return item, nil
}

// SearchResponse holds the items of a search call. A nil Items means the
// provider response carried no item collection at all.
type SearchResponse struct {
	Items []SearchItem
}
