// Package core - Category Business Logic
// Renaming or deleting a category propagates into every anime genre list
// that references it, so those operations go through the repository's
// transactional Rename/Delete rather than a plain row update.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"animehub/internal/repository"
	"animehub/pkg/models"
)

// CategoryService defines category operations
type CategoryService interface {
	Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Search(ctx context.Context, query string) ([]models.Category, error)
	Rename(ctx context.Context, id int64, req models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	seqRepo      repository.SequenceRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository, seqRepo repository.SequenceRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		seqRepo:      seqRepo,
	}
}

// Create creates a new category with a unique name
func (s *categoryService) Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if err := models.ValidateCategoryName(name); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("category %q already exists: %w", name, models.ErrInvalidInput)
	} else if !errors.Is(err, models.ErrCategoryNotFound) {
		return nil, err
	}

	id, err := s.seqRepo.NextID(ctx, repository.SeqCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate category id: %w", err)
	}

	category := &models.Category{ID: id, Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// GetByID retrieves a category by ID
func (s *categoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// List retrieves all categories
func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Search finds categories whose name contains the query
func (s *categoryService) Search(ctx context.Context, query string) ([]models.Category, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	categories, err := s.categoryRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search categories: %w", err)
	}
	return categories, nil
}

// Rename renames a category and rewrites the genre lists of every anime
// that referenced the old name
func (s *categoryService) Rename(ctx context.Context, id int64, req models.UpdateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if err := models.ValidateCategoryName(name); err != nil {
		return nil, err
	}

	if existing, err := s.categoryRepo.GetByName(ctx, name); err == nil && existing.ID != id {
		return nil, fmt.Errorf("category %q already exists: %w", name, models.ErrInvalidInput)
	} else if err != nil && !errors.Is(err, models.ErrCategoryNotFound) {
		return nil, err
	}

	if err := s.categoryRepo.Rename(ctx, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename category: %w", err)
	}

	return s.categoryRepo.GetByID(ctx, id)
}

// Delete removes a category and strips its name from every anime genre list
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
