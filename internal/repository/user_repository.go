package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// UserRepository handles user data persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	SearchByName(ctx context.Context, query string) ([]models.User, error)
	Update(ctx context.Context, id int64, update *models.UpdateProfileRequest) error
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, image_url, description, is_admin, is_blocked, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ImageURL,
		&user.Description,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user with a caller-assigned id
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, image_url, description, is_admin, is_blocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.ImageURL,
		user.Description,
		user.IsAdmin,
		user.IsBlocked,
	).Scan(&user.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_user")
	}
	return nil
}

// GetByID retrieves a user by id
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_id")
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, r.mapDBError(err, "get_user_by_email")
	}
	return user, nil
}

// EmailExists checks whether an email is already registered
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, r.mapDBError(err, "email_exists")
	}
	return exists, nil
}

// List returns all users (admin fetch-all)
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// SearchByName does a case-insensitive substring match on name
func (r *userRepository) SearchByName(ctx context.Context, search string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name ILIKE $1 ORDER BY id`
	ctx, cancel := utils.WithLongTimeout(ctx)
	defer cancel()

	return r.queryUsers(ctx, query, "%"+escapeLike(search)+"%")
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_users")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_user")
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Update applies a partial profile update. Password is expected to already
// be hashed by the service.
func (r *userRepository) Update(ctx context.Context, id int64, update *models.UpdateProfileRequest) error {
	var updates []string
	var args []interface{}
	args = append(args, id)
	argCount := 2

	if update.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *update.Name)
		argCount++
	}
	if update.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *update.Description)
		argCount++
	}
	if update.Password != nil {
		updates = append(updates, fmt.Sprintf("password_hash = $%d", argCount))
		args = append(args, *update.Password)
		argCount++
	}
	if update.ImageURL != nil {
		updates = append(updates, fmt.Sprintf("image_url = $%d", argCount))
		args = append(args, *update.ImageURL)
		argCount++
	}

	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING id`, strings.Join(updates, ", "))

	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var updatedID int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		return r.mapDBError(err, "update_user")
	}
	return nil
}

// SetBlocked sets the blocked flag
func (r *userRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var updatedID int64
	err := r.pool.QueryRow(ctx, `UPDATE users SET is_blocked = $2 WHERE id = $1 RETURNING id`, id, blocked).
		Scan(&updatedID)
	if err != nil {
		return r.mapDBError(err, "set_blocked")
	}
	return nil
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var deletedID int64
	err := r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		return r.mapDBError(err, "delete_user")
	}
	return nil
}

func (r *userRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrUserNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", operation, models.ErrEmailExists)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}
