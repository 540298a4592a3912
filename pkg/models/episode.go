package models

import "time"

// Episode represents a single episode of an anime. AnimeID is an
// application-level join key, not a database foreign key.
type Episode struct {
	ID            int64     `json:"id" db:"id"`
	AnimeID       int64     `json:"anime_id" db:"anime_id"`
	Title         string    `json:"title" db:"title"`
	EpisodeNumber string    `json:"episode_number" db:"episode_number"`
	VideoURL      string    `json:"video_url" db:"video_url"`
	ThumbnailURL  string    `json:"thumbnail_url" db:"thumbnail_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CreateEpisodeRequest represents the multipart form for creating an episode
type CreateEpisodeRequest struct {
	AnimeID       int64  `form:"anime_id" validate:"required"`
	Title         string `form:"title" validate:"required"`
	EpisodeNumber string `form:"episode_number" validate:"required"`
	VideoURL      string `form:"-"`
	ThumbnailURL  string `form:"-"`
}

// UpdateEpisodeRequest represents a partial episode update
type UpdateEpisodeRequest struct {
	Title         *string `form:"title"`
	EpisodeNumber *string `form:"episode_number"`
	VideoURL      *string `form:"-"`
	ThumbnailURL  *string `form:"-"`
}
