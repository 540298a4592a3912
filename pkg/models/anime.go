package models

import (
	"strings"
	"time"
)

// Anime represents a catalog entry. Genres carries category names by value,
// so category renames must be propagated into every anime that lists them.
type Anime struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Genres      []string  `json:"genres" db:"genres"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	BigImageURL string    `json:"big_image_url" db:"big_image_url"`
	Episodes    int       `json:"episodes" db:"episodes"` // declared total episode count
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateAnimeRequest represents the multipart form for creating an anime.
// Image files arrive as separate form files and are resolved to URLs by the
// upload layer before the service sees them.
type CreateAnimeRequest struct {
	Title       string   `form:"title" validate:"required"`
	Description string   `form:"description"`
	Genres      []string `form:"genres"`
	Episodes    int      `form:"episodes" validate:"min=0"`
	ImageURL    string   `form:"-"`
	BigImageURL string   `form:"-"`
}

// UpdateAnimeRequest represents a partial anime update
type UpdateAnimeRequest struct {
	Title       *string  `form:"title"`
	Description *string  `form:"description"`
	Genres      []string `form:"genres"`
	Episodes    *int     `form:"episodes"`
	ImageURL    *string  `form:"-"`
	BigImageURL *string  `form:"-"`
}

// ValidateAnimeTitle validates an anime title
func ValidateAnimeTitle(title string) error {
	if len(strings.TrimSpace(title)) == 0 {
		return ErrInvalidInput
	}
	if len(title) > 255 {
		return ErrInvalidInput
	}
	return nil
}
