package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"animehub/pkg/utils"
)

// Sequence names, one per entity kind. These match the counter documents the
// rest of the system expects.
const (
	SeqAnime           = "animeId"
	SeqEpisode         = "episodeId"
	SeqCategory        = "categoryId"
	SeqUser            = "userId"
	SeqStatus          = "statusId"
	SeqEpisodeProgress = "episodeStatusId"
)

// SequenceRepository issues monotonically increasing integer ids per entity
// kind. Ids are never reused and never rolled back: a failed entity creation
// leaves a gap, which is tolerated.
type SequenceRepository interface {
	NextID(ctx context.Context, name string) (int64, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository creates a PostgreSQL sequence repository
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// NextID atomically increments and returns the counter for name, creating it
// at 1 when absent. The upsert is a single statement, so two concurrent
// callers always observe distinct consecutive values.
func (r *sequenceRepository) NextID(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO counters (name, seq)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	var seq int64
	if err := r.pool.QueryRow(ctx, query, name).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next id for %q: %w", name, err)
	}
	return seq, nil
}
