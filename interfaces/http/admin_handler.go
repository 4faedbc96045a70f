package http

import (
	"net/http"

	"idle-fm-api/domain/dto"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

type IAdminHandler interface {
	GeneratePlaylist(ctx *gin.Context)
}

type AdminHandler struct {
	adminUsecase usecase.IAdminUsecase
}

func NewAdminHandler(adminUsecase usecase.IAdminUsecase) IAdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// GeneratePlaylist handles POST /api/admin/generate-playlist
func (h *AdminHandler) GeneratePlaylist(ctx *gin.Context) {
	var req dto.GeneratePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	res, err := h.adminUsecase.GeneratePlaylist(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Failed to generate playlist")
		return
	}
	ctx.JSON(http.StatusOK, res)
}
