package models

import (
	"time"
)

// User represents a system user
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	Description  string    `json:"description" db:"description"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsBlocked    bool      `json:"is_blocked" db:"is_blocked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfile - public-facing profile, NO sensitive data
type UserProfile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile strips a user down to its public representation.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		ImageURL:    u.ImageURL,
		Description: u.Description,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginResponse
type LoginResponse struct {
	Token     string      `json:"token"`
	User      UserProfile `json:"user"`
	ExpiresIn int         `json:"expires_in"` // seconds (client-friendly)
}

// UpdateProfileRequest represents the multipart profile form
type UpdateProfileRequest struct {
	Name        *string `form:"name"`
	Description *string `form:"description"`
	Password    *string `form:"password"`
	ImageURL    *string `form:"-"`
}
