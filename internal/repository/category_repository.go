package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// CategoryRepository handles category persistence. Because anime documents
// copy category names by value into their genres list, Rename and Delete
// propagate into the animes table within the same transaction.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	SearchByName(ctx context.Context, query string) ([]models.Category, error)
	// Rename updates the category row and replaces the old name in every
	// anime's genres list, preserving position.
	Rename(ctx context.Context, id int64, newName string) error
	// Delete removes the category row and strips the name from every
	// anime's genres list.
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new PostgreSQL category repository
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

// Create inserts a new category with a caller-assigned id
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`,
		category.ID, category.Name)
	if err != nil {
		return r.mapDBError(err, "create_category")
	}
	return nil
}

// GetByID retrieves a category by id
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	category := &models.Category{}
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
		Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, r.mapDBError(err, "get_category_by_id")
	}
	return category, nil
}

// GetByName retrieves a category by exact name
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	category := &models.Category{}
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE name = $1`, name).
		Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, r.mapDBError(err, "get_category_by_name")
	}
	return category, nil
}

// List returns all categories
func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryCategories(ctx, `SELECT id, name FROM categories ORDER BY id`)
}

// SearchByName does a case-insensitive substring match on name
func (r *categoryRepository) SearchByName(ctx context.Context, search string) ([]models.Category, error) {
	query := `SELECT id, name FROM categories WHERE name ILIKE $1 ORDER BY id`
	ctx, cancel := utils.WithLongTimeout(ctx)
	defer cancel()

	return r.queryCategories(ctx, query, "%"+escapeLike(search)+"%")
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...interface{}) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_categories")
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, r.mapDBError(err, "scan_category")
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Rename updates the row and propagates into animes.genres in one transaction.
// array_replace keeps each genre at its original position.
func (r *categoryRepository) Rename(ctx context.Context, id int64, newName string) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_rename_category")
	}
	defer tx.Rollback(ctx)

	var oldName string
	if err := tx.QueryRow(ctx, `SELECT name FROM categories WHERE id = $1`, id).Scan(&oldName); err != nil {
		return r.mapDBError(err, "rename_category")
	}

	if _, err := tx.Exec(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, id, newName); err != nil {
		return r.mapDBError(err, "rename_category")
	}

	_, err = tx.Exec(ctx, `
		UPDATE animes
		SET genres = array_replace(genres, $1, $2), updated_at = CURRENT_TIMESTAMP
		WHERE $1 = ANY(genres)
	`, oldName, newName)
	if err != nil {
		return r.mapDBError(err, "propagate_category_rename")
	}

	return tx.Commit(ctx)
}

// Delete removes the row and strips the name from animes.genres in one
// transaction.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_delete_category")
	}
	defer tx.Rollback(ctx)

	var name string
	if err := tx.QueryRow(ctx, `DELETE FROM categories WHERE id = $1 RETURNING name`, id).Scan(&name); err != nil {
		return r.mapDBError(err, "delete_category")
	}

	_, err = tx.Exec(ctx, `
		UPDATE animes
		SET genres = array_remove(genres, $1), updated_at = CURRENT_TIMESTAMP
		WHERE $1 = ANY(genres)
	`, name)
	if err != nil {
		return r.mapDBError(err, "propagate_category_delete")
	}

	return tx.Commit(ctx)
}

func (r *categoryRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrCategoryNotFound)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}
