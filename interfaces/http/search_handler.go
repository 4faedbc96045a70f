package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"idle-fm-api/domain/dto"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

type ISearchHandler interface {
	Search(ctx *gin.Context)
}

type SearchHandler struct {
	searchUseCase usecase.ISearchUseCase
	timeout       time.Duration
}

func NewSearchHandler(searchUseCase usecase.ISearchUseCase, timeout time.Duration) ISearchHandler {
	return &SearchHandler{searchUseCase: searchUseCase, timeout: timeout}
}

// Search handles GET /api/youtube/search?q=
func (h *SearchHandler) Search(ctx *gin.Context) {
	q := ctx.Query("q")
	if strings.TrimSpace(q) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}

	reqCtx := ctx.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(reqCtx, h.timeout)
		defer cancel()
	}

	slots, err := h.searchUseCase.SearchMedia(reqCtx, q)
	if err != nil {
		respondError(ctx, err, "search failed")
		return
	}
	ok(ctx, http.StatusOK, dto.NewSearchResults(slots))
}
