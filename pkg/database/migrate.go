package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist. External entity ids are
// assigned from the counters table, not from column defaults, so none of the
// id columns are serial.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			seq  BIGINT NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS animes (
			id            BIGINT PRIMARY KEY,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			genres        TEXT[] NOT NULL DEFAULT '{}',
			image_url     TEXT NOT NULL DEFAULT '',
			big_image_url TEXT NOT NULL DEFAULT '',
			episodes      INT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			id             BIGINT PRIMARY KEY,
			anime_id       BIGINT NOT NULL,
			title          TEXT NOT NULL,
			episode_number TEXT NOT NULL,
			video_url      TEXT NOT NULL DEFAULT '',
			thumbnail_url  TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_anime ON episodes (anime_id);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id   BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			image_url     TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			is_blocked    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		// UNIQUE(user_id, anime_id, kind) is the single-slot invariant:
		// one reaction, one favourite, one watch state per (user, anime).
		`CREATE TABLE IF NOT EXISTS statuses (
			id         BIGINT NOT NULL,
			user_id    BIGINT NOT NULL,
			anime_id   BIGINT NOT NULL,
			kind       TEXT NOT NULL CHECK (kind IN ('reaction', 'favourite', 'watch')),
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, anime_id, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_statuses_anime ON statuses (anime_id);`,
		`CREATE INDEX IF NOT EXISTS idx_statuses_user ON statuses (user_id, status);`,
		`CREATE TABLE IF NOT EXISTS episode_progress (
			id       BIGINT NOT NULL,
			user_id  BIGINT NOT NULL,
			anime_id BIGINT NOT NULL,
			episodes INT NOT NULL DEFAULT 0,
			UNIQUE (user_id, anime_id)
		);`,
	}

	for i, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}
	return nil
}
