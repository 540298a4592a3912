package models

import (
	"errors"
)

// Common errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAnimeNotFound    = errors.New("anime not found")
	ErrEpisodeNotFound  = errors.New("episode not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrStatusNotFound   = errors.New("status not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrUserBlocked        = errors.New("account is blocked")

	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidRange is returned when an episode-progress count falls
	// outside [0, Anime.Episodes].
	ErrInvalidRange = errors.New("episode count out of range")

	ErrStorageUnavailable = errors.New("storage unavailable")
)

// HTTPStatusFor maps application sentinel errors to HTTP status codes.
func HTTPStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAnimeNotFound),
		errors.Is(err, ErrEpisodeNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrStatusNotFound):
		return 404
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidRange):
		return 400
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUserBlocked):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrEmailExists):
		return 409
	default:
		return 500
	}
}
