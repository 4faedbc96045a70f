package dto

// CreatePlaylistRequest represents request for creating a playlist
type CreatePlaylistRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// AddVideoRequest appends a stored video to a playlist
type AddVideoRequest struct {
	YouTubeKey string `json:"youtube_key" binding:"required"`
}

// AddGifRequest appends a gif to a playlist
type AddGifRequest struct {
	GifID int `json:"gif_id" binding:"required"`
}

// ReorderRequest lists every item id of a playlist in its new order
type ReorderRequest struct {
	ItemIDs []int `json:"item_ids" binding:"required"`
}

// TagsRequest replaces nothing; given tags are added to the playlist
type TagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// GeneratePlaylistRequest represents the admin playlist generation request
type GeneratePlaylistRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	VideoLimit  int      `json:"videoLimit"`
}

// GeneratePlaylistResponse represents the admin playlist generation result
type GeneratePlaylistResponse struct {
	Message    string  `json:"message"`
	PlaylistID int     `json:"playlistId"`
	TagIDs     []int   `json:"tagIds"`
	Image      *string `json:"image"`
	OwnerID    int     `json:"owner_id"`
}

// PlaylistEvent is pushed to subscribers of a playlist stream
type PlaylistEvent struct {
	Type       string `json:"type"`
	PlaylistID int    `json:"playlist_id"`
	ItemID     int    `json:"item_id,omitempty"`
	ActorID    int    `json:"actor_id"`
}

// Playlist event types
const (
	EventItemAdded    = "item_added"
	EventItemRemoved  = "item_removed"
	EventItemsReorder = "items_reordered"
	EventTagsUpdated  = "tags_updated"
	EventPlaylistGone = "playlist_deleted"
)
