package http

import (
	"context"
	"errors"
	"net/http"

	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
	"idle-fm-api/usecase"

	"github.com/gin-gonic/gin"
)

const ErrorUnmarshal = "Error while unmarshal"

// respondError maps use case and repository errors to a status code; fallback
// is the message used for unexpected failures.
func respondError(ctx *gin.Context, err error, fallback string) {
	status, message := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, usecase.ErrValidation):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, repository.ErrConflict):
		status, message = http.StatusConflict, "Already exists"
	case errors.Is(err, usecase.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, usecase.ErrAccountInactive):
		status, message = http.StatusForbidden, "Account not activated, please check email."
	case errors.Is(err, usecase.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrTokenExpired):
		status, message = http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, usecase.ErrNoVideosFound):
		status, message = http.StatusBadRequest, "No videos found."
	case errors.Is(err, usecase.ErrUpstreamSearch):
		status, message = http.StatusBadGateway, "search failed"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	}
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		logger.WithContext(ctx.Request.Context()).WithField("error", err).Error(message)
		detail = message
	}
	ctx.JSON(status, gin.H{
		"error":   message,
		"message": detail,
	})
}

func badRequest(ctx *gin.Context, err error) {
	logger.WithContext(ctx.Request.Context()).WithField("error", err).Warn(ErrorUnmarshal)
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"message": err.Error(),
	})
}

func ok(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
