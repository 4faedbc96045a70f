package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"idle-fm-api/domain/dto"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
	"idle-fm-api/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const (
	SessionCookie  = "token"
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"
)

// Auth accepts the session cookie, or a Bearer token when no cookie is sent,
// and stores the caller's id and admin flag on the gin context.
func Auth(userRepository repository.IUser, secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		tokenString := sessionToken(ctx)
		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		claims, err := utils.ParseSessionToken(tokenString, secretKey)
		if err != nil {
			res.ResponseMessage = rejection(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		user, err := userRepository.GetByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.WithContext(ctx.Request.Context()).WithField("error", err).Error("Failed to load session user")
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if !user.IsActive {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set(ContextUserID, user.ID)
		ctx.Set(ContextIsAdmin, user.IsAdmin)
		ctx.Next()
	}
}

// AdminOnly must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !ctx.GetBool(ContextIsAdmin) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"})
			return
		}
		ctx.Next()
	}
}

func sessionToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authorization := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func rejection(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token: %v", err)
	}
	return "Unauthorized"
}
