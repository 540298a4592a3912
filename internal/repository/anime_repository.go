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

// AnimeRepository handles anime persistence
type AnimeRepository interface {
	Create(ctx context.Context, anime *models.Anime) error
	GetByID(ctx context.Context, id int64) (*models.Anime, error)
	List(ctx context.Context) ([]models.Anime, error)
	SearchByTitle(ctx context.Context, query string) ([]models.Anime, error)
	Update(ctx context.Context, id int64, update *models.UpdateAnimeRequest) error
	// Delete removes the anime and all of its episodes in one transaction.
	Delete(ctx context.Context, id int64) error
}

type animeRepository struct {
	pool *pgxpool.Pool
}

// NewAnimeRepository creates a new PostgreSQL anime repository
func NewAnimeRepository(pool *pgxpool.Pool) AnimeRepository {
	return &animeRepository{pool: pool}
}

const animeColumns = `id, title, description, genres, image_url, big_image_url, episodes, created_at, updated_at`

func scanAnime(row pgx.Row) (*models.Anime, error) {
	anime := &models.Anime{}
	err := row.Scan(
		&anime.ID,
		&anime.Title,
		&anime.Description,
		&anime.Genres,
		&anime.ImageURL,
		&anime.BigImageURL,
		&anime.Episodes,
		&anime.CreatedAt,
		&anime.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return anime, nil
}

// Create inserts a new anime. The caller assigns the id from the sequence
// generator before calling.
func (r *animeRepository) Create(ctx context.Context, anime *models.Anime) error {
	query := `
		INSERT INTO animes (id, title, description, genres, image_url, big_image_url, episodes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	err := r.pool.QueryRow(ctx, query,
		anime.ID,
		anime.Title,
		anime.Description,
		anime.Genres,
		anime.ImageURL,
		anime.BigImageURL,
		anime.Episodes,
	).Scan(&anime.CreatedAt, &anime.UpdatedAt)
	if err != nil {
		return r.mapDBError(err, "create_anime")
	}
	return nil
}

// GetByID retrieves an anime by its external id
func (r *animeRepository) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	query := `SELECT ` + animeColumns + ` FROM animes WHERE id = $1`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	anime, err := scanAnime(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_anime_by_id")
	}
	return anime, nil
}

// List returns the full catalog. Pagination is a client concern.
func (r *animeRepository) List(ctx context.Context) ([]models.Anime, error) {
	query := `SELECT ` + animeColumns + ` FROM animes ORDER BY id`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryAnimes(ctx, query)
}

// SearchByTitle does a case-insensitive substring match on title
func (r *animeRepository) SearchByTitle(ctx context.Context, search string) ([]models.Anime, error) {
	query := `SELECT ` + animeColumns + ` FROM animes WHERE title ILIKE $1 ORDER BY id`
	ctx, cancel := utils.WithLongTimeout(ctx)
	defer cancel()

	return r.queryAnimes(ctx, query, "%"+escapeLike(search)+"%")
}

func (r *animeRepository) queryAnimes(ctx context.Context, query string, args ...interface{}) ([]models.Anime, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_animes")
	}
	defer rows.Close()

	var animes []models.Anime
	for rows.Next() {
		anime, err := scanAnime(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_anime")
		}
		animes = append(animes, *anime)
	}
	return animes, rows.Err()
}

// Update applies a partial update, building the SET clause from the fields
// that are present.
func (r *animeRepository) Update(ctx context.Context, id int64, update *models.UpdateAnimeRequest) error {
	var updates []string
	var args []interface{}
	args = append(args, id)
	argCount := 2

	if update.Title != nil {
		updates = append(updates, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *update.Title)
		argCount++
	}
	if update.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *update.Description)
		argCount++
	}
	if update.Genres != nil {
		updates = append(updates, fmt.Sprintf("genres = $%d", argCount))
		args = append(args, update.Genres)
		argCount++
	}
	if update.Episodes != nil {
		updates = append(updates, fmt.Sprintf("episodes = $%d", argCount))
		args = append(args, *update.Episodes)
		argCount++
	}
	if update.ImageURL != nil {
		updates = append(updates, fmt.Sprintf("image_url = $%d", argCount))
		args = append(args, *update.ImageURL)
		argCount++
	}
	if update.BigImageURL != nil {
		updates = append(updates, fmt.Sprintf("big_image_url = $%d", argCount))
		args = append(args, *update.BigImageURL)
		argCount++
	}

	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE animes
		SET %s, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id
	`, strings.Join(updates, ", "))

	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var updatedID int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		return r.mapDBError(err, "update_anime")
	}
	return nil
}

// Delete removes an anime and its episodes atomically
func (r *animeRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_delete_anime")
	}
	defer tx.Rollback(ctx)

	var deletedID int64
	if err := tx.QueryRow(ctx, `DELETE FROM animes WHERE id = $1 RETURNING id`, id).Scan(&deletedID); err != nil {
		return r.mapDBError(err, "delete_anime")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM episodes WHERE anime_id = $1`, id); err != nil {
		return r.mapDBError(err, "delete_anime_episodes")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM statuses WHERE anime_id = $1`, id); err != nil {
		return r.mapDBError(err, "delete_anime_statuses")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM episode_progress WHERE anime_id = $1`, id); err != nil {
		return r.mapDBError(err, "delete_anime_progress")
	}
	return tx.Commit(ctx)
}

func (r *animeRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrAnimeNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("duplicate anime entry: %w", err)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}

// escapeLike escapes LIKE metacharacters in user-supplied search text
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
