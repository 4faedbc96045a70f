package dto

import "idle-fm-api/domain/model"

// SearchResult is one presented slot of a search response.
type SearchResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	Channel   string  `json:"channel,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  *string `json:"duration,omitempty"`
	Missing   bool    `json:"missing"`
}

// NewSearchResults maps hydrated slots into their presented form, keeping
// missing positions.
func NewSearchResults(slots []model.MediaSlot) []SearchResult {
	out := make([]SearchResult, 0, len(slots))
	for _, s := range slots {
		if s.Missing() {
			out = append(out, SearchResult{ID: s.Key, Missing: true})
			continue
		}
		out = append(out, SearchResult{
			ID:        s.Video.YouTubeKey,
			Title:     s.Video.Title,
			Channel:   s.Video.ChannelTitle,
			Thumbnail: s.Video.Thumbnails.Primary(),
			Duration:  s.Video.Duration,
		})
	}
	return out
}
