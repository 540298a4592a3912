package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"animehub/pkg/models"
)

// Snapshot is a local SQLite mirror of the user's library so the CLI and TUI
// can render list views without a round trip, and keep showing the last known
// state when the server is unreachable. It is a cache, never the source of
// truth: every successful fetch overwrites it wholesale for the rows fetched.
type Snapshot struct {
	db *sql.DB
}

// LibraryEntry is one row of the cached library view, already joined with the
// anime title so callers can render it directly.
type LibraryEntry struct {
	AnimeID   int64
	Title     string
	Episodes  int
	Watched   int
	Status    models.StatusTag
	CreatedAt time.Time
}

// OpenSnapshot opens (creating if needed) the snapshot database at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS animes (
		id       INTEGER PRIMARY KEY,
		title    TEXT NOT NULL,
		episodes INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS statuses (
		user_id    INTEGER NOT NULL,
		anime_id   INTEGER NOT NULL,
		kind       TEXT NOT NULL,
		status     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, anime_id, kind)
	);
	CREATE TABLE IF NOT EXISTS progress (
		user_id  INTEGER NOT NULL,
		anime_id INTEGER NOT NULL,
		episodes INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, anime_id)
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &Snapshot{db: db}, nil
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// SaveAnimes upserts catalog rows referenced by library entries.
func (s *Snapshot) SaveAnimes(animes []models.Anime) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO animes (id, title, episodes) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, episodes = excluded.episodes`)
	if err != nil {
		return fmt.Errorf("failed to prepare anime upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range animes {
		if _, err := stmt.Exec(a.ID, a.Title, a.Episodes); err != nil {
			return fmt.Errorf("failed to save anime %d: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// SaveStatuses replaces the cached rows for one user and tag with a freshly
// fetched set.
func (s *Snapshot) SaveStatuses(userID int64, tag models.StatusTag, statuses []models.Status) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM statuses WHERE user_id = ? AND status = ?`, userID, string(tag)); err != nil {
		return fmt.Errorf("failed to clear cached statuses: %w", err)
	}

	for _, st := range statuses {
		_, err := tx.Exec(`
			INSERT INTO statuses (user_id, anime_id, kind, status, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, anime_id, kind) DO UPDATE SET
				status = excluded.status, created_at = excluded.created_at`,
			st.UserID, st.AnimeID, string(st.Kind), string(st.Status), st.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save status row: %w", err)
		}
	}
	return tx.Commit()
}

// SaveProgress upserts one cached progress row.
func (s *Snapshot) SaveProgress(p models.EpisodeProgress) error {
	_, err := s.db.Exec(`
		INSERT INTO progress (user_id, anime_id, episodes) VALUES (?, ?, ?)
		ON CONFLICT (user_id, anime_id) DO UPDATE SET episodes = excluded.episodes`,
		p.UserID, p.AnimeID, p.Episodes)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// LoadLibrary reads the cached rows for one user and tag, joined with anime
// titles and watched-episode counts.
func (s *Snapshot) LoadLibrary(userID int64, tag models.StatusTag) ([]LibraryEntry, error) {
	rows, err := s.db.Query(`
		SELECT st.anime_id,
		       COALESCE(a.title, ''),
		       COALESCE(a.episodes, 0),
		       COALESCE(p.episodes, 0),
		       st.status,
		       st.created_at
		FROM statuses st
		LEFT JOIN animes a ON a.id = st.anime_id
		LEFT JOIN progress p ON p.user_id = st.user_id AND p.anime_id = st.anime_id
		WHERE st.user_id = ? AND st.status = ?
		ORDER BY st.anime_id`, userID, string(tag))
	if err != nil {
		return nil, fmt.Errorf("failed to load cached library: %w", err)
	}
	defer rows.Close()

	var entries []LibraryEntry
	for rows.Next() {
		var e LibraryEntry
		var status string
		if err := rows.Scan(&e.AnimeID, &e.Title, &e.Episodes, &e.Watched, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached library row: %w", err)
		}
		e.Status = models.StatusTag(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
