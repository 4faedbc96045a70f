package http

import (
	"net/http"
	"strconv"

	"idle-fm-api/domain/dto"
	"idle-fm-api/interfaces/middleware"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

// PlaylistStreamer serves the live event stream of one playlist.
type PlaylistStreamer interface {
	Serve(c *gin.Context, playlistID int)
}

type IPlaylistHandler interface {
	List(ctx *gin.Context)
	Create(ctx *gin.Context)
	Get(ctx *gin.Context)
	Delete(ctx *gin.Context)
	Items(ctx *gin.Context)
	AddVideo(ctx *gin.Context)
	AddGif(ctx *gin.Context)
	Reorder(ctx *gin.Context)
	RemoveItem(ctx *gin.Context)
	AddTags(ctx *gin.Context)
	Stream(ctx *gin.Context)
}

type PlaylistHandler struct {
	playlistUsecase usecase.IPlaylistUsecase
	streamer        PlaylistStreamer
}

func NewPlaylistHandler(playlistUsecase usecase.IPlaylistUsecase, streamer PlaylistStreamer) IPlaylistHandler {
	return &PlaylistHandler{playlistUsecase: playlistUsecase, streamer: streamer}
}

func actor(ctx *gin.Context) usecase.Actor {
	return usecase.Actor{
		UserID:  ctx.GetInt(middleware.ContextUserID),
		IsAdmin: ctx.GetBool(middleware.ContextIsAdmin),
	}
}

func intParam(ctx *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil || v <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return v, true
}

// List handles GET /api/playlists
func (h *PlaylistHandler) List(ctx *gin.Context) {
	playlists, err := h.playlistUsecase.List(ctx.Request.Context(), actor(ctx))
	if err != nil {
		respondError(ctx, err, "Failed to list playlists")
		return
	}
	ok(ctx, http.StatusOK, playlists)
}

// Create handles POST /api/playlists
func (h *PlaylistHandler) Create(ctx *gin.Context) {
	var req dto.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	playlist, err := h.playlistUsecase.Create(ctx.Request.Context(), actor(ctx), req)
	if err != nil {
		respondError(ctx, err, "Failed to create playlist")
		return
	}
	ok(ctx, http.StatusCreated, playlist)
}

// Get handles GET /api/playlists/:id
func (h *PlaylistHandler) Get(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	playlist, err := h.playlistUsecase.Get(ctx.Request.Context(), actor(ctx), id)
	if err != nil {
		respondError(ctx, err, "Failed to get playlist")
		return
	}
	ok(ctx, http.StatusOK, playlist)
}

// Delete handles DELETE /api/playlists/:id
func (h *PlaylistHandler) Delete(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	if err := h.playlistUsecase.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, err, "Failed to delete playlist")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Playlist deleted"})
}

// Items handles GET /api/playlists/:id/items
func (h *PlaylistHandler) Items(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	items, err := h.playlistUsecase.Items(ctx.Request.Context(), actor(ctx), id)
	if err != nil {
		respondError(ctx, err, "Failed to list playlist items")
		return
	}
	ok(ctx, http.StatusOK, items)
}

// AddVideo handles POST /api/playlists/:id/videos
func (h *PlaylistHandler) AddVideo(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.AddVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	itemID, err := h.playlistUsecase.AddVideo(ctx.Request.Context(), actor(ctx), id, req.YouTubeKey)
	if err != nil {
		respondError(ctx, err, "Failed to add video")
		return
	}
	ok(ctx, http.StatusCreated, gin.H{"item_id": itemID})
}

// AddGif handles POST /api/playlists/:id/gifs
func (h *PlaylistHandler) AddGif(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.AddGifRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	itemID, err := h.playlistUsecase.AddGif(ctx.Request.Context(), actor(ctx), id, req.GifID)
	if err != nil {
		respondError(ctx, err, "Failed to add gif")
		return
	}
	ok(ctx, http.StatusCreated, gin.H{"item_id": itemID})
}

// Reorder handles PUT /api/playlists/:id/order
func (h *PlaylistHandler) Reorder(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.playlistUsecase.Reorder(ctx.Request.Context(), actor(ctx), id, req.ItemIDs); err != nil {
		respondError(ctx, err, "Failed to reorder playlist")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Playlist reordered"})
}

// RemoveItem handles DELETE /api/playlists/:id/items/:itemId
func (h *PlaylistHandler) RemoveItem(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	itemID, valid := intParam(ctx, "itemId")
	if !valid {
		return
	}
	if err := h.playlistUsecase.RemoveItem(ctx.Request.Context(), actor(ctx), id, itemID); err != nil {
		respondError(ctx, err, "Failed to remove item")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed"})
}

// AddTags handles POST /api/playlists/:id/tags
func (h *PlaylistHandler) AddTags(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.TagsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	tagIDs, err := h.playlistUsecase.AddTags(ctx.Request.Context(), actor(ctx), id, req.Tags)
	if err != nil {
		respondError(ctx, err, "Failed to tag playlist")
		return
	}
	ok(ctx, http.StatusOK, gin.H{"tag_ids": tagIDs})
}

// Stream handles GET /api/playlists/:id/stream
func (h *PlaylistHandler) Stream(ctx *gin.Context) {
	id, valid := intParam(ctx, "id")
	if !valid {
		return
	}
	if _, err := h.playlistUsecase.Get(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, err, "Failed to open playlist stream")
		return
	}
	h.streamer.Serve(ctx, id)
}
