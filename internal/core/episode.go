// Package core - Episode Business Logic
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animehub/internal/repository"
	"animehub/pkg/models"
)

// EpisodeService defines episode catalog operations
type EpisodeService interface {
	Create(ctx context.Context, req models.CreateEpisodeRequest) (*models.Episode, error)
	GetByID(ctx context.Context, id int64) (*models.Episode, error)
	List(ctx context.Context) ([]models.Episode, error)
	ListByAnime(ctx context.Context, animeID int64) ([]models.Episode, error)
	Search(ctx context.Context, query string) ([]models.Episode, error)
	Update(ctx context.Context, id int64, req models.UpdateEpisodeRequest) (*models.Episode, error)
	Delete(ctx context.Context, id int64) error
}

type episodeService struct {
	episodeRepo repository.EpisodeRepository
	animeRepo   repository.AnimeRepository
	seqRepo     repository.SequenceRepository
}

// NewEpisodeService creates a new episode service
func NewEpisodeService(episodeRepo repository.EpisodeRepository, animeRepo repository.AnimeRepository, seqRepo repository.SequenceRepository) EpisodeService {
	return &episodeService{
		episodeRepo: episodeRepo,
		animeRepo:   animeRepo,
		seqRepo:     seqRepo,
	}
}

// Create creates a new episode under an existing anime
func (s *episodeService) Create(ctx context.Context, req models.CreateEpisodeRequest) (*models.Episode, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", models.ErrInvalidInput)
	}
	if strings.TrimSpace(req.EpisodeNumber) == "" {
		return nil, fmt.Errorf("episode number is required: %w", models.ErrInvalidInput)
	}

	// The parent must exist; an episode pointing at a missing anime would be
	// unreachable from every listing.
	if _, err := s.animeRepo.GetByID(ctx, req.AnimeID); err != nil {
		return nil, err
	}

	id, err := s.seqRepo.NextID(ctx, repository.SeqEpisode)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate episode id: %w", err)
	}

	episode := &models.Episode{
		ID:            id,
		AnimeID:       req.AnimeID,
		Title:         strings.TrimSpace(req.Title),
		EpisodeNumber: strings.TrimSpace(req.EpisodeNumber),
		VideoURL:      req.VideoURL,
		ThumbnailURL:  req.ThumbnailURL,
		CreatedAt:     time.Now(),
	}

	if err := s.episodeRepo.Create(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}

	return episode, nil
}

// GetByID retrieves an episode by ID
func (s *episodeService) GetByID(ctx context.Context, id int64) (*models.Episode, error) {
	return s.episodeRepo.GetByID(ctx, id)
}

// List retrieves all episodes
func (s *episodeService) List(ctx context.Context) ([]models.Episode, error) {
	episodes, err := s.episodeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return episodes, nil
}

// ListByAnime retrieves the episodes of one anime
func (s *episodeService) ListByAnime(ctx context.Context, animeID int64) ([]models.Episode, error) {
	episodes, err := s.episodeRepo.ListByAnime(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return episodes, nil
}

// Search finds episodes whose title contains the query
func (s *episodeService) Search(ctx context.Context, query string) ([]models.Episode, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	episodes, err := s.episodeRepo.SearchByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search episodes: %w", err)
	}
	return episodes, nil
}

// Update applies a partial update and returns the updated episode
func (s *episodeService) Update(ctx context.Context, id int64, req models.UpdateEpisodeRequest) (*models.Episode, error) {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", models.ErrInvalidInput)
	}

	if err := s.episodeRepo.Update(ctx, id, &req); err != nil {
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}

	return s.episodeRepo.GetByID(ctx, id)
}

// Delete removes an episode
func (s *episodeService) Delete(ctx context.Context, id int64) error {
	if err := s.episodeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}
