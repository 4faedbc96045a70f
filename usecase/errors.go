package usecase

import "errors"

var (
	// ErrUpstreamSearch means the YouTube search call failed or returned no item collection.
	ErrUpstreamSearch     = errors.New("upstream search failed")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAlreadyActivated   = errors.New("account already activated")
	ErrForbidden          = errors.New("forbidden")
	ErrNoVideosFound      = errors.New("no videos found")
)
