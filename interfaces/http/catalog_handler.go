package http

import (
	"net/http"
	"strconv"

	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

type ICatalogHandler interface {
	Tags(ctx *gin.Context)
	Gifs(ctx *gin.Context)
	Videos(ctx *gin.Context)
}

type CatalogHandler struct {
	catalogUsecase usecase.ICatalogUsecase
}

func NewCatalogHandler(catalogUsecase usecase.ICatalogUsecase) ICatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase}
}

// Tags handles GET /api/tags
func (h *CatalogHandler) Tags(ctx *gin.Context) {
	tags, err := h.catalogUsecase.Tags(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Failed to list tags")
		return
	}
	ok(ctx, http.StatusOK, tags)
}

// Gifs handles GET /api/gifs
func (h *CatalogHandler) Gifs(ctx *gin.Context) {
	gifs, err := h.catalogUsecase.Gifs(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Failed to list gifs")
		return
	}
	ok(ctx, http.StatusOK, gifs)
}

// Videos handles GET /api/videos?limit=
func (h *CatalogHandler) Videos(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = val
	}
	videos, err := h.catalogUsecase.RecentVideos(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err, "Failed to list videos")
		return
	}
	ok(ctx, http.StatusOK, videos)
}
