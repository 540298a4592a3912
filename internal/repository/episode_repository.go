package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// EpisodeRepository handles episode persistence
type EpisodeRepository interface {
	Create(ctx context.Context, episode *models.Episode) error
	GetByID(ctx context.Context, id int64) (*models.Episode, error)
	List(ctx context.Context) ([]models.Episode, error)
	ListByAnime(ctx context.Context, animeID int64) ([]models.Episode, error)
	SearchByTitle(ctx context.Context, query string) ([]models.Episode, error)
	Update(ctx context.Context, id int64, update *models.UpdateEpisodeRequest) error
	Delete(ctx context.Context, id int64) error
}

type episodeRepository struct {
	pool *pgxpool.Pool
}

// NewEpisodeRepository creates a new PostgreSQL episode repository
func NewEpisodeRepository(pool *pgxpool.Pool) EpisodeRepository {
	return &episodeRepository{pool: pool}
}

const episodeColumns = `id, anime_id, title, episode_number, video_url, thumbnail_url, created_at`

func scanEpisode(row pgx.Row) (*models.Episode, error) {
	ep := &models.Episode{}
	err := row.Scan(
		&ep.ID,
		&ep.AnimeID,
		&ep.Title,
		&ep.EpisodeNumber,
		&ep.VideoURL,
		&ep.ThumbnailURL,
		&ep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ep, nil
}

// Create inserts a new episode with a caller-assigned id
func (r *episodeRepository) Create(ctx context.Context, episode *models.Episode) error {
	query := `
		INSERT INTO episodes (id, anime_id, title, episode_number, video_url, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	err := r.pool.QueryRow(ctx, query,
		episode.ID,
		episode.AnimeID,
		episode.Title,
		episode.EpisodeNumber,
		episode.VideoURL,
		episode.ThumbnailURL,
	).Scan(&episode.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "create_episode")
	}
	return nil
}

// GetByID retrieves an episode by id
func (r *episodeRepository) GetByID(ctx context.Context, id int64) (*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id = $1`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	ep, err := scanEpisode(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapDBError(err, "get_episode_by_id")
	}
	return ep, nil
}

// List returns all episodes
func (r *episodeRepository) List(ctx context.Context) ([]models.Episode, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryEpisodes(ctx, `SELECT `+episodeColumns+` FROM episodes ORDER BY id`)
}

// ListByAnime returns an anime's episodes ordered by id
func (r *episodeRepository) ListByAnime(ctx context.Context, animeID int64) ([]models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE anime_id = $1 ORDER BY id`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryEpisodes(ctx, query, animeID)
}

// SearchByTitle does a case-insensitive substring match on title
func (r *episodeRepository) SearchByTitle(ctx context.Context, search string) ([]models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE title ILIKE $1 ORDER BY id`
	ctx, cancel := utils.WithLongTimeout(ctx)
	defer cancel()

	return r.queryEpisodes(ctx, query, "%"+escapeLike(search)+"%")
}

func (r *episodeRepository) queryEpisodes(ctx context.Context, query string, args ...interface{}) ([]models.Episode, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_episodes")
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_episode")
		}
		episodes = append(episodes, *ep)
	}
	return episodes, rows.Err()
}

// Update applies a partial episode update
func (r *episodeRepository) Update(ctx context.Context, id int64, update *models.UpdateEpisodeRequest) error {
	var updates []string
	var args []interface{}
	args = append(args, id)
	argCount := 2

	if update.Title != nil {
		updates = append(updates, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *update.Title)
		argCount++
	}
	if update.EpisodeNumber != nil {
		updates = append(updates, fmt.Sprintf("episode_number = $%d", argCount))
		args = append(args, *update.EpisodeNumber)
		argCount++
	}
	if update.VideoURL != nil {
		updates = append(updates, fmt.Sprintf("video_url = $%d", argCount))
		args = append(args, *update.VideoURL)
		argCount++
	}
	if update.ThumbnailURL != nil {
		updates = append(updates, fmt.Sprintf("thumbnail_url = $%d", argCount))
		args = append(args, *update.ThumbnailURL)
		argCount++
	}

	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE episodes SET %s WHERE id = $1 RETURNING id`, strings.Join(updates, ", "))

	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var updatedID int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		return r.mapDBError(err, "update_episode")
	}
	return nil
}

// Delete removes a single episode
func (r *episodeRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var deletedID int64
	err := r.pool.QueryRow(ctx, `DELETE FROM episodes WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		return r.mapDBError(err, "delete_episode")
	}
	return nil
}

func (r *episodeRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrEpisodeNotFound)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}
