package http

import (
	"net/http"

	"idle-fm-api/domain/dto"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

var activationMessages = map[string]string{
	dto.ActivationSuccess: "Account activated",
	dto.ActivationAlready: "Account already active",
	dto.ActivationExpired: "Activation link expired",
	dto.ActivationInvalid: "Invalid activation link",
}

type IActivationHandler interface {
	Activate(ctx *gin.Context)
	Resend(ctx *gin.Context)
}

type ActivationHandler struct {
	authUsecase usecase.IAuthUsecase
}

func NewActivationHandler(authUsecase usecase.IAuthUsecase) IActivationHandler {
	return &ActivationHandler{authUsecase: authUsecase}
}

// Activate handles GET /api/activations/activate?token=
func (h *ActivationHandler) Activate(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}
	status, err := h.authUsecase.Activate(ctx.Request.Context(), token)
	if err != nil {
		respondError(ctx, err, "Failed to activate account")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  status,
		"message": activationMessages[status],
	})
}

// Resend handles POST /api/activations/resend
func (h *ActivationHandler) Resend(ctx *gin.Context) {
	var req dto.EmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.authUsecase.ResendActivation(ctx.Request.Context(), req.Email); err != nil {
		respondError(ctx, err, "Failed to resend activation")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "If the email exists, a new link was sent."})
}
