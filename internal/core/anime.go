// Package core - Anime Business Logic
// Protocol-agnostic anime catalog service
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animehub/internal/repository"
	"animehub/pkg/models"
)

// AnimeService defines anime catalog operations
type AnimeService interface {
	Create(ctx context.Context, req models.CreateAnimeRequest) (*models.Anime, error)
	GetByID(ctx context.Context, id int64) (*models.Anime, error)
	List(ctx context.Context) ([]models.Anime, error)
	Search(ctx context.Context, query string) ([]models.Anime, error)
	Update(ctx context.Context, id int64, req models.UpdateAnimeRequest) (*models.Anime, error)
	Delete(ctx context.Context, id int64) error
}

type animeService struct {
	animeRepo repository.AnimeRepository
	seqRepo   repository.SequenceRepository
}

// NewAnimeService creates a new anime service
func NewAnimeService(animeRepo repository.AnimeRepository, seqRepo repository.SequenceRepository) AnimeService {
	return &animeService{
		animeRepo: animeRepo,
		seqRepo:   seqRepo,
	}
}

// Create creates a new anime with a sequence-assigned id
func (s *animeService) Create(ctx context.Context, req models.CreateAnimeRequest) (*models.Anime, error) {
	if err := models.ValidateAnimeTitle(req.Title); err != nil {
		return nil, err
	}
	if req.Episodes < 0 {
		return nil, fmt.Errorf("episode count cannot be negative: %w", models.ErrInvalidInput)
	}

	id, err := s.seqRepo.NextID(ctx, repository.SeqAnime)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate anime id: %w", err)
	}

	genres := req.Genres
	if genres == nil {
		genres = []string{}
	}

	anime := &models.Anime{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Genres:      genres,
		ImageURL:    req.ImageURL,
		BigImageURL: req.BigImageURL,
		Episodes:    req.Episodes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.animeRepo.Create(ctx, anime); err != nil {
		return nil, fmt.Errorf("failed to create anime: %w", err)
	}

	return anime, nil
}

// GetByID retrieves an anime by ID
func (s *animeService) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	return s.animeRepo.GetByID(ctx, id)
}

// List retrieves all animes
func (s *animeService) List(ctx context.Context) ([]models.Anime, error) {
	animes, err := s.animeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list animes: %w", err)
	}
	return animes, nil
}

// Search finds animes whose title contains the query, case-insensitively
func (s *animeService) Search(ctx context.Context, query string) ([]models.Anime, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	animes, err := s.animeRepo.SearchByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search animes: %w", err)
	}
	return animes, nil
}

// Update applies a partial update and returns the updated anime
func (s *animeService) Update(ctx context.Context, id int64, req models.UpdateAnimeRequest) (*models.Anime, error) {
	if req.Title != nil {
		if err := models.ValidateAnimeTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Episodes != nil && *req.Episodes < 0 {
		return nil, fmt.Errorf("episode count cannot be negative: %w", models.ErrInvalidInput)
	}

	if err := s.animeRepo.Update(ctx, id, &req); err != nil {
		return nil, fmt.Errorf("failed to update anime: %w", err)
	}

	return s.animeRepo.GetByID(ctx, id)
}

// Delete removes an anime together with its episodes and engagement rows
func (s *animeService) Delete(ctx context.Context, id int64) error {
	if err := s.animeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete anime: %w", err)
	}
	return nil
}
