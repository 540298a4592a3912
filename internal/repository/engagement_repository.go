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

// EngagementRepository is the engagement store: status rows (one slot per
// kind per (user, anime), enforced by the storage unique key) and episode
// progress rows. The composite Apply*/Clear* operations exist because a
// watch-state change can fan out into a progress change, and the pair must
// commit or roll back together.
type EngagementRepository interface {
	GetSlot(ctx context.Context, userID, animeID int64, kind models.SlotKind) (*models.Status, error)
	// UpsertSlot atomically replaces whatever occupies the slot. This is the
	// single-statement alternative to delete-then-insert, so two concurrent
	// writers cannot leave two rows in one slot.
	UpsertSlot(ctx context.Context, status *models.Status) error
	// DeleteSlotIf deletes the slot only when its current tag matches.
	// Reports whether a row was deleted.
	DeleteSlotIf(ctx context.Context, userID, animeID int64, kind models.SlotKind, tag models.StatusTag) (bool, error)
	DeleteSlot(ctx context.Context, userID, animeID int64, kind models.SlotKind) (bool, error)

	GetProgress(ctx context.Context, userID, animeID int64) (*models.EpisodeProgress, error)
	UpsertProgress(ctx context.Context, progress *models.EpisodeProgress) error
	DeleteProgress(ctx context.Context, userID, animeID int64) (bool, error)

	// ApplyWatchState upserts the watch slot and, when progress is non-nil,
	// the progress row, in one transaction.
	ApplyWatchState(ctx context.Context, watch *models.Status, progress *models.EpisodeProgress) error
	// ClearWatchState deletes the watch slot and the progress row in one
	// transaction (the "Select" pseudo-state).
	ClearWatchState(ctx context.Context, userID, animeID int64) error

	CountReactions(ctx context.Context, animeID int64) (models.ReactionCounts, error)
	CountByUser(ctx context.Context, userID int64) (map[models.StatusTag]int, error)
	SumEpisodes(ctx context.Context, userID int64) (int, error)
	ListByUserAndTag(ctx context.Context, userID int64, tag models.StatusTag) ([]models.Status, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Status, error)
	ListByAnime(ctx context.Context, animeID int64) ([]models.Status, error)
}

type engagementRepository struct {
	pool *pgxpool.Pool
}

// NewEngagementRepository creates a new PostgreSQL engagement repository
func NewEngagementRepository(pool *pgxpool.Pool) EngagementRepository {
	return &engagementRepository{pool: pool}
}

const statusColumns = `id, user_id, anime_id, kind, status, created_at`

func scanStatus(row pgx.Row) (*models.Status, error) {
	s := &models.Status{}
	err := row.Scan(&s.ID, &s.UserID, &s.AnimeID, &s.Kind, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSlot returns the status row occupying the given slot, or ErrStatusNotFound
func (r *engagementRepository) GetSlot(ctx context.Context, userID, animeID int64, kind models.SlotKind) (*models.Status, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	query := `SELECT ` + statusColumns + ` FROM statuses WHERE user_id = $1 AND anime_id = $2 AND kind = $3`
	s, err := scanStatus(r.pool.QueryRow(ctx, query, userID, animeID, kind))
	if err != nil {
		return nil, r.mapDBError(err, "get_slot")
	}
	return s, nil
}

// UpsertSlot atomically writes the slot, replacing any previous occupant
func (r *engagementRepository) UpsertSlot(ctx context.Context, status *models.Status) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.upsertSlot(ctx, r.pool, status)
}

func (r *engagementRepository) upsertSlot(ctx context.Context, q queryRower, status *models.Status) error {
	query := `
		INSERT INTO statuses (id, user_id, anime_id, kind, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, anime_id, kind)
		DO UPDATE SET id = EXCLUDED.id, status = EXCLUDED.status, created_at = CURRENT_TIMESTAMP
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query,
		status.ID,
		status.UserID,
		status.AnimeID,
		status.Kind,
		status.Status,
	).Scan(&status.CreatedAt)
	if err != nil {
		return r.mapDBError(err, "upsert_slot")
	}
	return nil
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DeleteSlotIf deletes the slot only when it currently holds tag
func (r *engagementRepository) DeleteSlotIf(ctx context.Context, userID, animeID int64, kind models.SlotKind, tag models.StatusTag) (bool, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `
		DELETE FROM statuses
		WHERE user_id = $1 AND anime_id = $2 AND kind = $3 AND status = $4
	`, userID, animeID, kind, tag)
	if err != nil {
		return false, r.mapDBError(err, "delete_slot_if")
	}
	return ct.RowsAffected() > 0, nil
}

// DeleteSlot deletes whatever occupies the slot
func (r *engagementRepository) DeleteSlot(ctx context.Context, userID, animeID int64, kind models.SlotKind) (bool, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `
		DELETE FROM statuses
		WHERE user_id = $1 AND anime_id = $2 AND kind = $3
	`, userID, animeID, kind)
	if err != nil {
		return false, r.mapDBError(err, "delete_slot")
	}
	return ct.RowsAffected() > 0, nil
}

// GetProgress returns the progress row for (user, anime), or ErrStatusNotFound
func (r *engagementRepository) GetProgress(ctx context.Context, userID, animeID int64) (*models.EpisodeProgress, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	p := &models.EpisodeProgress{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, anime_id, episodes
		FROM episode_progress
		WHERE user_id = $1 AND anime_id = $2
	`, userID, animeID).Scan(&p.ID, &p.UserID, &p.AnimeID, &p.Episodes)
	if err != nil {
		return nil, r.mapDBError(err, "get_progress")
	}
	return p, nil
}

// UpsertProgress atomically writes the progress row for (user, anime)
func (r *engagementRepository) UpsertProgress(ctx context.Context, progress *models.EpisodeProgress) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.upsertProgress(ctx, r.pool, progress)
}

func (r *engagementRepository) upsertProgress(ctx context.Context, q queryRower, progress *models.EpisodeProgress) error {
	query := `
		INSERT INTO episode_progress (id, user_id, anime_id, episodes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, anime_id)
		DO UPDATE SET id = EXCLUDED.id, episodes = EXCLUDED.episodes
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query,
		progress.ID,
		progress.UserID,
		progress.AnimeID,
		progress.Episodes,
	).Scan(&id)
	if err != nil {
		return r.mapDBError(err, "upsert_progress")
	}
	return nil
}

// DeleteProgress removes the progress row for (user, anime)
func (r *engagementRepository) DeleteProgress(ctx context.Context, userID, animeID int64) (bool, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `
		DELETE FROM episode_progress WHERE user_id = $1 AND anime_id = $2
	`, userID, animeID)
	if err != nil {
		return false, r.mapDBError(err, "delete_progress")
	}
	return ct.RowsAffected() > 0, nil
}

// ApplyWatchState writes the watch slot and optional progress row atomically
func (r *engagementRepository) ApplyWatchState(ctx context.Context, watch *models.Status, progress *models.EpisodeProgress) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_apply_watch_state")
	}
	defer tx.Rollback(ctx)

	if err := r.upsertSlot(ctx, tx, watch); err != nil {
		return err
	}
	if progress != nil {
		if err := r.upsertProgress(ctx, tx, progress); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ClearWatchState deletes the watch slot and progress row atomically
func (r *engagementRepository) ClearWatchState(ctx context.Context, userID, animeID int64) error {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.mapDBError(err, "begin_clear_watch_state")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM statuses WHERE user_id = $1 AND anime_id = $2 AND kind = $3
	`, userID, animeID, models.KindWatch); err != nil {
		return r.mapDBError(err, "clear_watch_slot")
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM episode_progress WHERE user_id = $1 AND anime_id = $2
	`, userID, animeID); err != nil {
		return r.mapDBError(err, "clear_progress")
	}
	return tx.Commit(ctx)
}

// CountReactions tallies reaction rows for an anime
func (r *engagementRepository) CountReactions(ctx context.Context, animeID int64) (models.ReactionCounts, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var counts models.ReactionCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM statuses
		WHERE anime_id = $1 AND kind = $4
	`, animeID, models.TagLikes, models.TagDislikes, models.KindReaction).
		Scan(&counts.Likes, &counts.Dislikes)
	if err != nil {
		return counts, r.mapDBError(err, "count_reactions")
	}
	return counts, nil
}

// CountByUser returns per-tag counts for one user's status rows
func (r *engagementRepository) CountByUser(ctx context.Context, userID int64) (map[models.StatusTag]int, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM statuses WHERE user_id = $1 GROUP BY status
	`, userID)
	if err != nil {
		return nil, r.mapDBError(err, "count_by_user")
	}
	defer rows.Close()

	counts := make(map[models.StatusTag]int)
	for rows.Next() {
		var tag models.StatusTag
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, r.mapDBError(err, "scan_status_count")
		}
		counts[tag] = n
	}
	return counts, rows.Err()
}

// SumEpisodes returns the user's total watched episodes across all animes
func (r *engagementRepository) SumEpisodes(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(episodes), 0) FROM episode_progress WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, r.mapDBError(err, "sum_episodes")
	}
	return total, nil
}

// ListByUserAndTag returns a user's status rows holding tag, in insertion order
func (r *engagementRepository) ListByUserAndTag(ctx context.Context, userID int64, tag models.StatusTag) ([]models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE user_id = $1 AND status = $2 ORDER BY id`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryStatuses(ctx, query, userID, tag)
}

// ListByUser returns all of a user's status rows
func (r *engagementRepository) ListByUser(ctx context.Context, userID int64) ([]models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE user_id = $1 ORDER BY id`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryStatuses(ctx, query, userID)
}

// ListByAnime returns all status rows for an anime
func (r *engagementRepository) ListByAnime(ctx context.Context, animeID int64) ([]models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses WHERE anime_id = $1 ORDER BY id`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	return r.queryStatuses(ctx, query, animeID)
}

func (r *engagementRepository) queryStatuses(ctx context.Context, query string, args ...interface{}) ([]models.Status, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapDBError(err, "list_statuses")
	}
	defer rows.Close()

	var statuses []models.Status
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, r.mapDBError(err, "scan_status")
		}
		statuses = append(statuses, *s)
	}
	return statuses, rows.Err()
}

func (r *engagementRepository) mapDBError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, models.ErrStatusNotFound)
	}
	return fmt.Errorf("database error during %s: %w", operation, err)
}
