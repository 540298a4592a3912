// Package core - User Business Logic
package core

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"animehub/internal/repository"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// UserService defines user administration and profile operations
type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Search finds users whose name contains the query
func (s *userService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	users, err := s.userRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies a partial profile update and returns the user
func (s *userService) UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.User, error) {
	if req.Name != nil {
		if err := utils.ValidateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		req.Password = &h
	}

	if err := s.userRepo.Update(ctx, id, &req); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.userRepo.GetByID(ctx, id)
}

// SetBlocked flips the block flag; blocked users fail token validation on
// their next request
func (s *userService) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if err := s.userRepo.SetBlocked(ctx, id, blocked); err != nil {
		return fmt.Errorf("failed to update block flag: %w", err)
	}
	return nil
}

// Delete removes a user account
func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
