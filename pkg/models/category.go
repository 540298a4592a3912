package models

import "strings"

// Category represents a genre tag. Anime documents copy the name by value
// into their genres list, so renames and deletes propagate explicitly.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateCategoryRequest represents a category rename
type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// ValidateCategoryName validates a category name
func ValidateCategoryName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > 100 {
		return ErrInvalidInput
	}
	return nil
}
