package model

import "time"

type Playlist struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	Image       *string   `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaylistItem is one ordered entry of a playlist; exactly one of Video or Gif is set.
type PlaylistItem struct {
	ID         int       `json:"id"`
	PlaylistID int       `json:"playlist_id"`
	Position   int       `json:"position"`
	Video      *Video    `json:"video,omitempty"`
	Gif        *Gif      `json:"gif,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Gif struct {
	ID        int       `json:"id"`
	TenorKey  string    `json:"tenor_key"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
