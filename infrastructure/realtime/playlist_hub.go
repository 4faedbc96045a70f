package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"idle-fm-api/domain/dto"

	"github.com/gin-gonic/gin"
)

// Hub maintains per-playlist subscribers listening for collaboration events.
type Hub struct {
	mu        sync.RWMutex
	playlists map[int]map[chan dto.PlaylistEvent]struct{}
	closed    bool
}

func NewPlaylistHub() *Hub {
	return &Hub{playlists: make(map[int]map[chan dto.PlaylistEvent]struct{})}
}

// Subscribe registers a buffered channel for playlistID. The returned func
// unregisters it and closes the channel.
func (h *Hub) Subscribe(playlistID int) (<-chan dto.PlaylistEvent, func()) {
	ch := make(chan dto.PlaylistEvent, 8)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.playlists[playlistID] == nil {
		h.playlists[playlistID] = make(map[chan dto.PlaylistEvent]struct{})
	}
	h.playlists[playlistID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.removeSubscriber(playlistID, ch) })
	}
}

func (h *Hub) Subscribers(playlistID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.playlists[playlistID])
}

// Serve streams events of playlistID to the client as Server-Sent Events
// until the request is cancelled or the playlist is deleted.
func (h *Hub) Serve(c *gin.Context, playlistID int) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering
	c.Status(http.StatusOK)

	events, cancel := h.Subscribe(playlistID)
	defer cancel()

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evt.Type, data)
			c.Writer.Flush()
			if evt.Type == dto.EventPlaylistGone {
				return
			}
		}
	}
}

// Publish delivers event to every subscriber of its playlist. Slow
// subscribers miss events rather than block the publisher.
func (h *Hub) Publish(event dto.PlaylistEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.playlists[event.PlaylistID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close ends every open stream and refuses new subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, subs := range h.playlists {
		for ch := range subs {
			close(ch)
		}
		delete(h.playlists, id)
	}
}

func (h *Hub) removeSubscriber(playlistID int, ch chan dto.PlaylistEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.playlists[playlistID]
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(h.playlists, playlistID)
	}
}
