package http

import (
	"net/http"

	"idle-fm-api/domain/dto"
	"idle-fm-api/infrastructure/utils"
	"idle-fm-api/interfaces/middleware"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

const resetRequestedMessage = "Password reset link sent if email exists."

type IAuthHandler interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Me(ctx *gin.Context)
	RequestPasswordReset(ctx *gin.Context)
	ResetPassword(ctx *gin.Context)
}

type AuthHandler struct {
	authUsecase  usecase.IAuthUsecase
	secureCookie bool
}

// NewAuthHandler builds the account handlers. secureCookie should be false
// only for plain-HTTP local development.
func NewAuthHandler(authUsecase usecase.IAuthUsecase, secureCookie bool) IAuthHandler {
	return &AuthHandler{authUsecase: authUsecase, secureCookie: secureCookie}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	user, err := h.authUsecase.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Failed to register")
		return
	}
	ok(ctx, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	user, token, err := h.authUsecase.Login(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err, "Failed to login")
		return
	}
	h.setSessionCookie(ctx, token, int(utils.SessionTTL.Seconds()))
	ok(ctx, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(ctx *gin.Context) {
	user, err := h.authUsecase.Me(ctx.Request.Context(), ctx.GetInt(middleware.ContextUserID))
	if err != nil {
		respondError(ctx, err, "Failed to load user")
		return
	}
	ok(ctx, http.StatusOK, user)
}

// RequestPasswordReset handles POST /api/auth/request-password-reset
func (h *AuthHandler) RequestPasswordReset(ctx *gin.Context) {
	var req dto.EmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.authUsecase.RequestPasswordReset(ctx.Request.Context(), req.Email); err != nil {
		respondError(ctx, err, "Failed to request password reset")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": resetRequestedMessage})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.authUsecase.ResetPassword(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err, "Failed to reset password")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successful"})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	if h.secureCookie {
		ctx.SetSameSite(http.SameSiteNoneMode)
	} else {
		ctx.SetSameSite(http.SameSiteLaxMode)
	}
	ctx.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.secureCookie, true)
}
